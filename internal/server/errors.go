package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-analyzer/internal/llm"
	"github.com/jonathan/career-analyzer/internal/narrative"
	"github.com/jonathan/career-analyzer/internal/parsing"
	"github.com/jonathan/career-analyzer/internal/rendering"
	"github.com/jonathan/career-analyzer/internal/schemas"
	"github.com/jonathan/career-analyzer/internal/session"
	"github.com/jonathan/career-analyzer/internal/workflow"
)

// FieldError is one invalid field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Message string
	Fields  []FieldError
}

func (e *ErrValidation) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// fromValidator converts validator/v10 and schema failures into ErrValidation.
func fromValidator(message string, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := &ErrValidation{Message: message}
		for _, fe := range ve {
			out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describeTag(fe)})
		}
		return out
	}
	var se *schemas.ValidationError
	if errors.As(err, &se) {
		out := &ErrValidation{Message: message}
		for _, fe := range se.Errors {
			out.Fields = append(out.Fields, FieldError{Field: fe.Field, Message: fe.Message})
		}
		return out
	}
	return &ErrValidation{Message: fmt.Sprintf("%s: %v", message, err)}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "alpha":
		return "must contain letters only"
	case "defining_word":
		return "is not in the defining word list"
	case "career_value":
		return "is not one of the career values"
	}
	return "failed " + fe.Tag() + " validation"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		phaseErr       *workflow.PhaseError
		transitionErr  *workflow.TransitionError
		notFound       *session.NotFoundError
		validationErr  *ErrValidation
		unsupported    *parsing.UnsupportedFormatError
		tooLarge       *parsing.TooLargeError
		maxBytes       *http.MaxBytesError
		badFormat      *rendering.UnsupportedFormatError
		unavailable    *narrative.UnavailableError
		apiCall        *narrative.APICallError
		narrativeParse *narrative.ParseError
	)
	switch {
	case errors.Is(err, workflow.ErrStale), errors.As(err, &phaseErr):
		return http.StatusConflict
	case errors.As(err, &transitionErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr), errors.As(err, &unsupported), errors.As(err, &badFormat):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiCall):
		switch apiCall.Kind {
		case llm.ErrorAuth:
			return http.StatusUnauthorized
		case llm.ErrorRateLimited:
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	case errors.As(err, &narrativeParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the user-facing text for err.
func ErrorMessage(err error) string {
	var apiCall *narrative.APICallError
	if errors.As(err, &apiCall) {
		switch apiCall.Kind {
		case llm.ErrorAuth:
			return "Model provider authentication failed. Please check your API key."
		case llm.ErrorRateLimited:
			return "Rate limit exceeded. Please try again in a moment."
		}
		return "Failed to generate narrative: " + errorText(apiCall.Cause)
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Sprintf("request body exceeds the %d byte limit", maxBytes.Limit)
	}
	if errors.Is(err, workflow.ErrStale) {
		return "the workflow changed while the request was running; the result was discarded"
	}
	return err.Error()
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
