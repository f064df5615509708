package codec

import "encoding/json"

// JSON encodes/decodes payloads as JSON.
type JSON struct{}

func (c *JSON) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSON) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSON) Name() string { return NameJSON }

func (c *JSON) ContentType() string { return "application/json" }
