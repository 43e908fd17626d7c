// Package httpx maps domain errors onto RFC7807 problem responses.
package httpx

import (
	"errors"
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/authz"
	"github.com/gatehouse-io/gatehouse/internal/credstore"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// RespondError answers an API request with the problem detail matching the
// domain error. Unmapped errors answer 500 with no detail; error text from
// the storage layer never reaches the client that way.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, credstore.ErrUnknownUser):
		Problem(w, http.StatusNotFound, "Unknown User", err.Error())
	case errors.Is(err, credstore.ErrDuplicateUser):
		Problem(w, http.StatusConflict, "Duplicate User", err.Error())
	case errors.Is(err, authz.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, authz.ErrDenied):
		Problem(w, http.StatusForbidden, "Access Denied", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		// Detail stays empty: the body must not say why the login failed.
		Problem(w, http.StatusUnauthorized, "Invalid Credentials", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
