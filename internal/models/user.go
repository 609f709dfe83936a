package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent   UserRole = "STUDENT"
	RoleRegistrar UserRole = "REGISTRAR"
)

// User is a directory entry; SID is set for students, AdminID for registrars.
type User struct {
	ID      int64    `db:"user_id" json:"userId"`
	Name    string   `db:"name" json:"name"`
	Email   string   `db:"email" json:"email"`
	Role    UserRole `db:"role" json:"role"`
	SID     *string  `db:"sid" json:"sid,omitempty"`
	AdminID *string  `db:"admin_id" json:"adminId,omitempty"`
}
