package async

// Identifier uniquely names a job type within a tenant. It serves as the
// registered endpoint name in legacy mode, the nonce action namespace, and
// the extension-point namespace. It is deterministic — the same
// (prefix, jobName, tenantID) always composes the same Identifier — and it
// never changes after construction.
type Identifier string

// NewIdentifier composes prefix, job name, and tenant id into an
// Identifier of the form "prefix_jobName_tenantID".
func NewIdentifier(prefix, jobName, tenantID string) Identifier {
	return Identifier(prefix + "_" + jobName + "_" + tenantID)
}

func (i Identifier) String() string { return string(i) }
