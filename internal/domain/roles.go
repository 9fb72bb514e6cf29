package domain

type Role string

const (
	// Individual tradesperson offering work on the marketplace
	RoleTradesman Role = "tradesman"
	// Business account (contractor company); can post jobs and hire
	RoleBusiness Role = "business"
	// Admin users manage the marketplace itself
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleTradesman) || r == string(RoleBusiness) || r == string(RoleAdmin)
}

// DefaultRole derives the role assigned at registration from the business flag.
// The credential core never changes a role after creation.
func DefaultRole(isBusiness bool) Role {
	if isBusiness {
		return RoleBusiness
	}
	return RoleTradesman
}
