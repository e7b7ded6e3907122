package domain

import "time"

// Colaborador is a gpac staff account. Role values are Portuguese; legacy
// English values from old records are normalized on read.
type Colaborador struct {
	ID                        string     `json:"_id"`
	Name                      string     `json:"name"`
	Email                     string     `json:"email"`
	Phone                     string     `json:"phone"`
	Role                      string     `json:"role"`
	Specialty                 []string   `json:"specialty"`
	CRM                       *string    `json:"crm"`
	Gender                    *string    `json:"gender"`
	BirthDate                 *string    `json:"birthDate"`
	CPF                       *string    `json:"cpf"`
	Username                  *string    `json:"username"`
	PasswordHash              *string    `json:"-"`
	ChangePasswordOnFirstLogin bool      `json:"changePasswordOnFirstLogin"`
	TwoFactorAuth             bool       `json:"twoFactorAuth"`
	TOTPSecret                *string    `json:"-"`
	UserProfile               *string    `json:"userProfile"`
	Photo                     *string    `json:"photo"`
	SessionVersion            int        `json:"-"`
	CreatedAt                 time.Time  `json:"createdAt"`
	MFADisabledAt             *time.Time `json:"-"`
	MFADisabledReason         *string    `json:"-"`
}

// MigrateRole converts legacy English roles to their Portuguese equivalents.
// Unknown values pass through unchanged, which makes the migration idempotent.
func MigrateRole(old string) string {
	switch old {
	case "doctor":
		return "medico"
	case "nurse":
		return "enfermeiro"
	case "receptionist":
		return "recepcionista"
	case "admin":
		return "administrador"
	default:
		return old
	}
}

// Profile is a gpac permission profile referenced by Colaborador.UserProfile.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CPF       *string   `json:"cpf"`
	BirthDate *string   `json:"birthDate"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	City      *string   `json:"city"`
	State     *string   `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

type Appointment struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	ColaboradorID string    `json:"colaborador_id"`
	Specialty     *string   `json:"specialty"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusCheck is the trivial liveness record kept by the gpac tenant.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}
