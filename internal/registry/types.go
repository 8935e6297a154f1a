package registry

// DefaultBaseURL is the public crates registry.
const DefaultBaseURL = "https://crates.io"

// DefaultUserAgent identifies this client to the registry. crates.io rejects
// requests without a User-Agent.
const DefaultUserAgent = "update-notifier (+https://crates.io/crates/update-notifier)"

// VersionsResponse is the body of GET /api/v1/crates/{name}/versions.
// A nil slice means the field was absent; an empty non-nil slice means it
// was present but empty.
type VersionsResponse struct {
	Versions []Version     `json:"versions"`
	Errors   []ErrorDetail `json:"errors"`
}

// Version is one published version. The registry sends many more fields.
type Version struct {
	Num string `json:"num"`
}

// ErrorDetail is one entry of a registry error payload.
type ErrorDetail struct {
	Detail string `json:"detail"`
}
