package model

// Role is the caller role as resolved by the outer layer. The core trusts it;
// authentication and session handling live outside this module.
type Role string

var (
	RoleOwner     Role = "owner"
	RoleBuyer     Role = "buyer"
	RoleRegistrar Role = "registrar"
)

// Actor identifies the caller of a registry operation.
type Actor struct {
	ID   uint64
	Role Role
}
