package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Kind classifies a provider failure. The HTTP layer and the retry policy both
// branch on it, so every error leaving this package carries one.
type Kind string

const (
	KindQuotaExceeded       Kind = "quota_exceeded"
	KindBlocked             Kind = "blocked"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindMalformedResponse   Kind = "malformed_response"
	KindEmptyResponse       Kind = "empty_response"
	KindGenerationExhausted Kind = "generation_exhausted"
	KindProviderError       Kind = "provider_error"

	// kindNoImage marks an attempt that finished without image output. It never
	// escapes Policy.Do: exhaustion turns it into KindGenerationExhausted.
	kindNoImage Kind = "no_image"
)

const quotaGuidance = "the Gemini API quota is exhausted; wait for the quota window to reset or upgrade the API plan"

func (k Kind) message() string {
	switch k {
	case KindQuotaExceeded:
		return "quota exceeded"
	case KindBlocked:
		return "blocked by content safety"
	case KindProviderUnavailable:
		return "provider unavailable"
	case KindMalformedResponse:
		return "malformed response"
	case KindEmptyResponse:
		return "empty response"
	case KindGenerationExhausted:
		return "generation exhausted"
	case kindNoImage:
		return "no image produced"
	default:
		return "provider error"
	}
}

// Error is a classified provider failure tagged with the operation it came from.
type Error struct {
	Kind   Kind
	Op     string
	Reason string
	Err    error
}

var (
	ErrQuotaExceeded       = &Error{Kind: KindQuotaExceeded}
	ErrBlocked             = &Error{Kind: KindBlocked}
	ErrProviderUnavailable = &Error{Kind: KindProviderUnavailable}
	ErrMalformedResponse   = &Error{Kind: KindMalformedResponse}
	ErrEmptyResponse       = &Error{Kind: KindEmptyResponse}
	ErrGenerationExhausted = &Error{Kind: KindGenerationExhausted}
	ErrProviderError       = &Error{Kind: KindProviderError}

	// ErrImageRequired is returned when an operation needing pixel data gets an absent payload.
	ErrImageRequired = errors.New("image payload has no data")
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.message())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind, so errors.Is(err, ErrQuotaExceeded)
// holds for any quota error regardless of operation or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Reason == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the classification of err, or "" if err did not come from the gateway.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

// Classify maps any provider-side failure onto the error taxonomy.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindProviderUnavailable, Reason: "request timed out", Err: err}
	}

	if code, status, ok := apiErrorCode(err); ok {
		switch {
		case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
			return &Error{Kind: KindQuotaExceeded, Reason: quotaGuidance, Err: err}
		case code >= 500:
			return &Error{Kind: KindProviderUnavailable, Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case isQuotaMessage(msg):
		return &Error{Kind: KindQuotaExceeded, Reason: quotaGuidance, Err: err}
	case isUnavailableMessage(msg):
		return &Error{Kind: KindProviderUnavailable, Err: err}
	}

	return &Error{Kind: KindProviderError, Err: err}
}

// withOp tags err with the operation name while keeping its classification.
// Nested operations are joined with "/", outermost first.
func withOp(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrImageRequired) {
		return fmt.Errorf("%s: %w", op, err)
	}
	c := Classify(err)
	tagged := *c
	if c.Op != "" {
		tagged.Op = op + "/" + c.Op
	} else {
		tagged.Op = op
	}
	return &tagged
}

func apiErrorCode(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}

func isQuotaMessage(msg string) bool {
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429")
}

func isUnavailableMessage(msg string) bool {
	return strings.Contains(msg, "internal error") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "504")
}
