package dto

import "github.com/fieldcrew/marketplace-api/internal/domain"

// AccountView is the account payload returned to clients. The password hash
// and the lockout bookkeeping never leave the service.
type AccountView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	IsBusiness bool   `json:"isBusiness"`
	Role       string `json:"role"`
	Image      string `json:"image"`
	Address    string `json:"address"`
}

func AccountViewFrom(a domain.Account) AccountView {
	return AccountView{
		ID:         a.ID,
		Name:       a.Name,
		Phone:      a.Phone,
		Email:      a.Email,
		IsBusiness: a.IsBusiness,
		Role:       a.Role,
		Image:      a.Image,
		Address:    a.Address,
	}
}

// AuthData is returned by register and login.
type AuthData struct {
	Token string      `json:"token"`
	User  AccountView `json:"user"`
}

// MeData is returned by /me.
type MeData struct {
	User AccountView `json:"user"`
}
