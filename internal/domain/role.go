package domain

// Role names known to the platform. Roles live in a database table and are
// resolved by name; these constants cover the seeded set.
const (
	RoleCitizen = "citizen"
	RoleLawyer  = "lawyer"
	RoleAdmin   = "admin"
)

// Role is the access-control role attached to an account.
type Role struct {
	ID   string
	Name string
}
