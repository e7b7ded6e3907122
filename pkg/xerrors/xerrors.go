package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Login / sessions
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// 2FA / TOTP
var (
	ErrInvalidOrExpiredToken = errors.New("temporary token invalid or expired")
	ErrInvalidTOTP           = errors.New("invalid totp code")
	Err2FANotEnabled         = errors.New("2FA not enabled for this user")
)

// Checkout / payments
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidPrice    = errors.New("invalid price format")
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentProvider = errors.New("payment provider could not produce a payment link")
)

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// IsUniqueViolation reports whether err is a Postgres duplicate-key error.
func IsUniqueViolation(err error) bool {
	return ParsePGErrorCode(err) == "23505"
}
