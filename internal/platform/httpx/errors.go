package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// Sentinel errors for domain layers without their own.
var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("duplicate entry")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Validation failures stay 4xx with a user-facing message; a rejected
// submission is 502 because the draft survives for a retry.
func RespondError(w http.ResponseWriter, err error) {
	var verr *shared.ValidationError
	var serr *shared.SubmissionError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &verr):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", verr.Error())
	case errors.As(err, &fieldErrs):
		Problem(w, http.StatusBadRequest, "Validation Failed", fieldErrs.Error())
	case errors.As(err, &serr):
		Problem(w, http.StatusBadGateway, "Submission Rejected", serr.Error())
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate), errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrInvalid):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Data Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
