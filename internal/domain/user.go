package domain

import "time"

// Role is the authorization role a user registers with
type Role string

const (
	RolePatient  Role = "patient"
	RoleProvider Role = "provider"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleProvider
}

// User represents an account in the system
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"password"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PublicUser is the user view returned to clients, without the password digest
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the password digest
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
