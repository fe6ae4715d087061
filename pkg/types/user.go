package types

import "time"

type UserRole string

const (
	UserRoleDonor     UserRole = "donor"
	UserRoleRecipient UserRole = "recipient"
	UserRoleDoctor    UserRole = "doctor"
	UserRoleAdmin     UserRole = "admin"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Email     *string   `db:"email" json:"email,omitempty"`
	FullName  *string   `db:"full_name" json:"full_name,omitempty"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
