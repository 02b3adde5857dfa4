package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-insights/internal/domain"
	"github.com/phrazzld/scry-insights/internal/service"
)

// StatusClientClosedRequest is the non-standard status logged for requests
// whose client disconnected before a response was ready.
const StatusClientClosedRequest = 499

type errorResponseSpec struct {
	status  int
	message string
}

// Configuration failures get their own message so operators can tell them
// apart from transient outages.
var errorResponses = map[service.ErrorKind]errorResponseSpec{
	service.KindInvalidRequest:      {http.StatusBadRequest, "Invalid request"},
	service.KindUpstreamUnavailable: {http.StatusServiceUnavailable, "Event data is temporarily unavailable, retry later"},
	service.KindConfiguration:       {http.StatusInternalServerError, "Insights cannot be computed due to a configuration error"},
	service.KindCanceled:            {StatusClientClosedRequest, "Request canceled"},
	service.KindInternal:            {http.StatusInternalServerError, "An unexpected error occurred"},
}

func responseSpecFor(err error) errorResponseSpec {
	if err == nil {
		return errorResponses[service.KindInternal]
	}
	if errors.Is(err, domain.ErrValidation) {
		return errorResponses[service.KindInvalidRequest]
	}
	if spec, ok := errorResponses[service.Classify(err)]; ok {
		return spec
	}
	return errorResponses[service.KindInternal]
}

// MapErrorToStatusCode maps a service error to its HTTP status code.
func MapErrorToStatusCode(err error) int {
	return responseSpecFor(err).status
}

// GetSafeErrorMessage returns the client-facing message for err. The error
// text itself is never exposed.
func GetSafeErrorMessage(err error) string {
	return responseSpecFor(err).message
}

// SanitizeValidationError describes the first failed field without leaking
// struct names or rule parameters.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation error"
	}
	fe := fieldErrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "datetime":
		return "expected an RFC3339 timestamp"
	case "max":
		return "too long"
	case "printascii":
		return "unsupported characters"
	default:
		return "validation failed"
	}
}
