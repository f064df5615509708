// Package codec defines the serialization contract for self-call payloads.
// JSON is the default wire format; MessagePack is available for payloads
// where JSON overhead matters.
package codec

// Codec encodes and decodes payload bodies.
type Codec interface {
	// Encode serializes a value to bytes.
	Encode(v any) ([]byte, error)

	// Decode deserializes bytes into v.
	Decode(data []byte, v any) error

	// Name returns the codec identifier (e.g., "json", "msgpack").
	Name() string

	// ContentType returns the MIME type for the encoding.
	ContentType() string
}

// Codec name constants.
const (
	NameJSON    = "json"
	NameMsgpack = "msgpack"
)

// Get returns a codec by name. Defaults to JSON.
func Get(name string) Codec {
	switch name {
	case NameMsgpack:
		return &Msgpack{}
	default:
		return &JSON{}
	}
}

// Carrier is implemented by jobs that pin their own payload codec.
// The dispatcher encodes with the job's codec so both sides of the
// self-call agree on the wire format.
type Carrier interface {
	Codec() Codec
}
