package auth

import "time"

// Employee is the identity record behind every authenticated request.
// Name, email, employee number, phone and avatar URL are globally unique.
type Employee struct {
	ID           string    `json:"id"`
	Number       string    `json:"emp_id"`
	Name         string    `json:"emp_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Type         string    `json:"emp_type"`
	Designation  string    `json:"emp_designation"`
	Department   string    `json:"emp_dept"`
	Phone        string    `json:"emp_ph"`
	AvatarURL    string    `json:"avatar"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to attach to a request context or response:
// the password hash and the stored refresh token are stripped.
func (e Employee) Sanitized() Employee {
	e.PasswordHash = ""
	e.RefreshToken = ""
	return e
}

// TokenPair carries freshly issued credentials.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
