package reddit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTokenExpired is returned for HTTP 401: the access token is no
	// longer accepted and should be refreshed.
	ErrTokenExpired = errors.New("reddit: access token expired")
	// ErrChallengeRequired is returned when reddit demands a captcha, which
	// it does for accounts with low karma.
	ErrChallengeRequired = errors.New("reddit: captcha challenge required")
)

// APIError is any other unsuccessful response. Code is reddit's error code
// (e.g. "SUBREDDIT_NOEXIST") when the body carried one.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("reddit: %s: %s (status %d)", e.Code, e.Message, e.Status)
	case e.Code != "":
		return fmt.Sprintf("reddit: %s (status %d)", e.Code, e.Status)
	default:
		return fmt.Sprintf("reddit: unexpected status %d", e.Status)
	}
}

// jsonErrors is the errors array of an api_type=json response. Each entry
// is [code, message, field].
type jsonErrors [][]string

func (errs jsonErrors) err(status int) error {
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		if len(e) > 0 && strings.EqualFold(e[0], "BAD_CAPTCHA") {
			return ErrChallengeRequired
		}
	}

	first := errs[0]
	apiErr := &APIError{Status: status}
	if len(first) > 0 {
		apiErr.Code = first[0]
	}
	if len(first) > 1 {
		apiErr.Message = first[1]
	}
	return apiErr
}
