package google

import (
	"errors"

	ai "github.com/mwhitford/manifold"
	"google.golang.org/genai"
)

// wrapError categorizes a Google GenAI error. genai.APIError does not
// expose response headers, so no Retry-After hint is available.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.Code
	msg := err.Error()

	switch {
	case code == 429 || (code >= 500 && code < 600):
		return ai.NewTransientError(msg, code, err)
	case code == 400 || code == 404 || code == 422:
		return ai.NewUserInputError(msg, code, err)
	default:
		return ai.NewPermanentError(msg, code, err)
	}
}
