package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call into the buckets the client
// reacts to differently.
type Kind string

const (
	// KindNetwork covers transport failures: DNS, refused connections,
	// timeouts — the request may never have reached the backend.
	KindNetwork Kind = "NETWORK"
	// KindServer covers 5xx responses and 2xx envelopes with success=false.
	KindServer Kind = "SERVER"
	// KindValidation covers 400-class payload rejections.
	KindValidation Kind = "VALIDATION"
	// KindUnauthorized covers 401/403 (missing, expired or rejected token).
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindNotFound covers 404.
	KindNotFound Kind = "NOT_FOUND"
)

// APIError is the classified outcome of a failed backend call.
type APIError struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// IsNotFound reports whether err is an APIError with KindNotFound.
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsValidation reports whether err is an APIError with KindValidation.
func IsValidation(err error) bool {
	return hasKind(err, KindValidation)
}

// IsUnauthorized reports whether err is an APIError with KindUnauthorized.
func IsUnauthorized(err error) bool {
	return hasKind(err, KindUnauthorized)
}

func hasKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// classifyStatus maps an HTTP status to an error kind.
func classifyStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindUnauthorized
	case status == 404:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}
