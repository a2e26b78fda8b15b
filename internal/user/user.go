package user

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User is an account keyed by the identity asserted by the external
// identity provider. There is no password.
type User struct {
	ID               int64     `json:"id"`
	ExternalIdentity string    `json:"external_identity"`
	Email            string    `json:"email"`
	Role             Role      `json:"role"`
	FullName         string    `json:"full_name"`
	Phone            *string   `json:"phone"`
	Address          *string   `json:"address"`
	CreatedAt        time.Time `json:"created_at"`
}
