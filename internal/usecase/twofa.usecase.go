package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// totpOpts pins the verification parameters: 30s steps, six digits and a
// ±1-step window so codes from the adjacent steps still pass under clock
// drift.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// ValidateTOTPAt checks a code against the secret at an explicit instant.
func ValidateTOTPAt(code, secret string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, t, totpOpts)
	return err == nil && ok
}

// Enrollment is the result of 2FA setup: the shared secret, the otpauth://
// provisioning URI and the QR code rendered as a PNG data URL.
type Enrollment struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          string `json:"qrCode"`
	AlreadyEnrolled bool   `json:"alreadyEnrolled,omitempty"`
}

// generateEnrollment creates a fresh TOTP key for the account and renders the
// provisioning QR.
func generateEnrollment(issuer, accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      30,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	img, err := key.Image(256, 256)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return &Enrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRCode:          "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// StaffTwoFAUsecase drives the gpac staff TOTP routes (/2fa/*).
type StaffTwoFAUsecase struct {
	staff  StaffStore
	issuer string
	now    func() time.Time
}

// StaffStore is the slice of the staff repository the 2FA flow needs.
type StaffStore interface {
	GetByID(ctx context.Context, id string) (*domain.Colaborador, error)
	SaveTOTPSecret(ctx context.Context, id, secret string) error
	DisableTwoFA(ctx context.Context, id, reason string, at time.Time) error
}

func NewStaffTwoFAUsecase(staff StaffStore, issuer string) *StaffTwoFAUsecase {
	return &StaffTwoFAUsecase{staff: staff, issuer: issuer, now: time.Now}
}

// Status reports whether the staff member is enrolled.
func (uc *StaffTwoFAUsecase) Status(ctx context.Context, userID string) (bool, error) {
	c, err := uc.staff.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return c.TOTPSecret != nil && *c.TOTPSecret != "", nil
}

// Setup enrolls the member. An existing secret is never rotated: the call
// reports alreadyEnrolled instead.
func (uc *StaffTwoFAUsecase) Setup(ctx context.Context, userID string) (*Enrollment, error) {
	c, err := uc.staff.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.TOTPSecret != nil && *c.TOTPSecret != "" {
		return &Enrollment{AlreadyEnrolled: true}, nil
	}

	account := c.Email
	if account == "" && c.Username != nil {
		account = *c.Username
	}
	if account == "" {
		account = userID
	}

	enr, err := generateEnrollment(uc.issuer, account)
	if err != nil {
		return nil, err
	}
	if err := uc.staff.SaveTOTPSecret(ctx, userID, enr.Secret); err != nil {
		return nil, err
	}
	return enr, nil
}

// Verify checks a code for an enrolled member; a missing secret simply
// verifies false rather than erroring, matching the route contract.
func (uc *StaffTwoFAUsecase) Verify(ctx context.Context, userID, code string) (bool, error) {
	c, err := uc.staff.GetByID(ctx, userID)
	if err != nil {
		if err == xerrors.ErrUserNotFound {
			return false, nil
		}
		return false, err
	}
	if c.TOTPSecret == nil || *c.TOTPSecret == "" {
		return false, nil
	}
	return ValidateTOTPAt(code, *c.TOTPSecret, uc.now()), nil
}

// Disable clears the enrollment and bumps session_version so live sessions
// are invalidated on their next read.
func (uc *StaffTwoFAUsecase) Disable(ctx context.Context, userID, reason string) error {
	if reason == "" {
		reason = "admin disabled"
	}
	return uc.staff.DisableTwoFA(ctx, userID, reason, uc.now())
}

// DisableFor disables another member's enrollment. Only administrators may
// target someone other than themselves.
func (uc *StaffTwoFAUsecase) DisableFor(ctx context.Context, callerID, targetID, reason string) error {
	if targetID == "" || targetID == callerID {
		return uc.Disable(ctx, callerID, reason)
	}
	caller, err := uc.staff.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if domain.MigrateRole(caller.Role) != "administrador" {
		return xerrors.ErrForbidden
	}
	if _, err := uc.staff.GetByID(ctx, targetID); err != nil {
		return err
	}
	return uc.Disable(ctx, targetID, reason)
}
