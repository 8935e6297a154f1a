package registry

import "fmt"

// TransportError reports that the request could not be completed or that the
// body was not JSON. StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("registry request failed (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("registry request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a JSON body with no recognizable shape.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed registry response: " + e.Reason
}

// RegistryError carries the detail text the registry reported, verbatim.
type RegistryError struct {
	Detail string
}

func (e *RegistryError) Error() string { return e.Detail }
