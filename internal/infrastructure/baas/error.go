package baas

import "fmt"

// ProviderError is a non-2xx answer from the BaaS, carrying the
// provider's own message so it can be surfaced to the user verbatim.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider rejected request (status %d): %s", e.Status, e.Message)
}
