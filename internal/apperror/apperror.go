package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable tag sent to clients in the "error" field.
type Kind string

const (
	KindMissingInput            Kind = "missing_input"
	KindUnsupportedFormat       Kind = "unsupported_format"
	KindSessionNotFound         Kind = "session_not_found"
	KindRateLimitExceeded       Kind = "rate_limit_exceeded"
	KindGlobalRateLimitExceeded Kind = "global_rate_limit_exceeded"
	KindUpstreamFetch           Kind = "upstream_fetch_error"
	KindStoreUnavailable        Kind = "store_unavailable"
	KindUnexpected              Kind = "unexpected_failure"
)

// Error is a failure that knows how it should be presented over HTTP.
type Error struct {
	Kind       Kind
	Status     int
	Message    string
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, status int, message, suggestion string, cause error) *Error {
	return &Error{
		Kind:       kind,
		Status:     status,
		Message:    message,
		Suggestion: suggestion,
		Cause:      cause,
	}
}

func MissingInput(message string) *Error {
	return New(KindMissingInput, http.StatusBadRequest, message,
		"Provide both a CV and a job offer (file, link or text), or a session_id from a previous analysis.", nil)
}

func UnsupportedFormat(message string, cause error) *Error {
	return New(KindUnsupportedFormat, http.StatusBadRequest, message,
		"Upload the document as PDF, DOCX or TXT.", cause)
}

func SessionNotFound(sessionID string) *Error {
	return New(KindSessionNotFound, http.StatusNotFound,
		fmt.Sprintf("Session '%s' was not found in the system.", sessionID),
		"Please verify that the session ID is correct or provide CV and job offer files to create a new analysis.", nil)
}

func RateLimitExceeded(limit int) *Error {
	return New(KindRateLimitExceeded, http.StatusTooManyRequests,
		fmt.Sprintf("You have reached the limit of %d queries per day.", limit),
		"Please try again tomorrow or contact the administrator if you need more queries.", nil)
}

func GlobalRateLimitExceeded(limit int) *Error {
	return New(KindGlobalRateLimitExceeded, http.StatusTooManyRequests,
		fmt.Sprintf("The global limit of %d daily queries has been reached.", limit),
		"Please try again tomorrow. This limit protects the system from potential attacks.", nil)
}

func UpstreamFetch(message string, cause error) *Error {
	return New(KindUpstreamFetch, http.StatusBadRequest, message,
		"Check that the link is public and reachable, or upload the document instead.", cause)
}

func StoreUnavailable(cause error) *Error {
	return New(KindStoreUnavailable, http.StatusServiceUnavailable,
		"The session store is temporarily unavailable.",
		"Please retry in a few minutes.", cause)
}

func Unexpected(cause error) *Error {
	message := "An unexpected error occurred while processing the request."
	if cause != nil {
		message = cause.Error()
	}
	return New(KindUnexpected, http.StatusInternalServerError, message,
		"Please try again later. If the problem persists, contact the administrator.", cause)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// From returns err as an *Error, wrapping anything unclassified as an
// unexpected failure. A nil err yields nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return Unexpected(err)
}
