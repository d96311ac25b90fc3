package api

import (
	"errors"
	"net/http"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/internal/server/api/auth"
)

// problem builds an error response titled after the HTTP status text.
func problem(status int, detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: status, Title: http.StatusText(status), Detail: detail}
}

func ErrBadRequest(detail string) *apitypes.ApiError   { return problem(http.StatusBadRequest, detail) }
func ErrUnauthorized(detail string) *apitypes.ApiError { return problem(http.StatusUnauthorized, detail) }
func ErrNotFound(detail string) *apitypes.ApiError     { return problem(http.StatusNotFound, detail) }
func ErrConflict(detail string) *apitypes.ApiError     { return problem(http.StatusConflict, detail) }
func ErrInternal(detail string) *apitypes.ApiError {
	return problem(http.StatusInternalServerError, detail)
}

// WrapError turns err into the response sent to the client. Wrapped
// *apitypes.ApiError values pass through; a failed password check is 401;
// anything else is reported as an internal error.
func WrapError(err error) *apitypes.ApiError {
	if err == nil {
		return nil
	}
	var ae *apitypes.ApiError
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, auth.ErrInvalidPassword):
		return ErrUnauthorized(err.Error())
	default:
		return ErrInternal(err.Error())
	}
}
