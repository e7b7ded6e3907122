package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/jeannegris/equora/pkg/response"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// writeError maps domain errors onto HTTP status codes. Anything unmapped is
// a 500 and gets logged; the client never sees internal detail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrInvalidCredentials),
		errors.Is(err, xerrors.ErrInvalidOrExpiredToken),
		errors.Is(err, xerrors.ErrInvalidTOTP),
		errors.Is(err, xerrors.ErrInvalidSession),
		errors.Is(err, xerrors.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, xerrors.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, xerrors.ErrUserNotFound),
		errors.Is(err, xerrors.ErrOrderNotFound),
		errors.Is(err, xerrors.ErrNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, xerrors.ErrUserAlreadyExists),
		errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrInvalidRequest),
		errors.Is(err, xerrors.ErrEmptyCart),
		errors.Is(err, xerrors.ErrInvalidPrice),
		errors.Is(err, xerrors.Err2FANotEnabled):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, xerrors.ErrPaymentProvider):
		response.Error(w, http.StatusInternalServerError, err.Error())
	default:
		log.Printf("unhandled error: %v", err)
		response.Error(w, http.StatusInternalServerError, "unexpected error occurred")
	}
}
