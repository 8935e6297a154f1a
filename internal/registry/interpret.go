package registry

// Interpret resolves a decoded response into the latest version or an error.
//
// versions wins over errors when both are present. The registry orders
// versions newest first, so the first entry is taken as latest.
func Interpret(resp VersionsResponse) (string, error) {
	if resp.Versions != nil {
		if len(resp.Versions) == 0 {
			return "", &MalformedResponseError{Reason: "versions array is empty"}
		}
		return resp.Versions[0].Num, nil
	}
	if resp.Errors != nil {
		if len(resp.Errors) == 0 {
			return "", &MalformedResponseError{Reason: "errors array is empty"}
		}
		return "", &RegistryError{Detail: resp.Errors[0].Detail}
	}
	return "", &MalformedResponseError{Reason: "response has neither versions nor errors"}
}
