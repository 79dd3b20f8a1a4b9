package embeddings

import "errors"

// ProviderError marks a failure inside an embedding provider. The
// search layer catches these at its boundary: a provider outage must
// never fail the save that triggered the embedding.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + " embedding provider: " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
