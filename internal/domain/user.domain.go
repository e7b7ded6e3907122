package domain

import "time"

// User is an equora admin-panel account. TOTP enrollment is tracked by
// TwoFASecret plus the provisioning flags: the QR keeps being re-shown on
// login until the first successful verification flips ProvisioningURIUsed.
type User struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	IsActive            bool       `json:"is_active"`
	IsAdmin             bool       `json:"is_admin"`
	TwoFASecret         *string    `json:"twofa_secret,omitempty"`
	ProvisioningURI     *string    `json:"provisioning_uri,omitempty"`
	ProvisioningURIUsed bool       `json:"provisioning_uri_used"`
	SessionVersion      int        `json:"-"`
	MFADisabledAt       *time.Time `json:"-"`
	MFADisabledReason   *string    `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
}

// TwoFAEnabled reports whether the password step must be followed by a TOTP
// step.
func (u *User) TwoFAEnabled() bool {
	return u.TwoFASecret != nil && *u.TwoFASecret != ""
}

type UserCreate struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Enable2FA bool   `json:"enable_2fa"`
}

type UserUpdate struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	IsActive  *bool   `json:"is_active"`
	IsAdmin   *bool   `json:"is_admin"`
	Enable2FA *bool   `json:"enable_2fa"`
}

// UserOut is the API projection of a User; it never carries the password
// hash but keeps the provisioning URI so the admin UI can re-show the QR.
type UserOut struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	IsActive        bool    `json:"is_active"`
	IsAdmin         bool    `json:"is_admin"`
	TwoFASecret     *string `json:"twofa_secret"`
	ProvisioningURI *string `json:"provisioning_uri"`
}

func (u *User) Out() UserOut {
	return UserOut{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		IsActive:        u.IsActive,
		IsAdmin:         u.IsAdmin,
		TwoFASecret:     u.TwoFASecret,
		ProvisioningURI: u.ProvisioningURI,
	}
}

type Client struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   string  `json:"email"`
}
