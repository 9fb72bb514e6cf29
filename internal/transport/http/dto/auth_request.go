package dto

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/fieldcrew/marketplace-api/internal/application/auth"
	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// -------- Core auth --------

type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Phone      string `json:"phone" validate:"required,phone"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=1024,password_strength"`
	Address    string `json:"address" validate:"required,min=2,max=255"`
	Image      string `json:"image" validate:"omitempty,url,max=1024"`
	IsBusiness bool   `json:"isBusiness"`
}

// Normalize trims fields and rewrites the phone number to E.164. Safe to run
// before Validate: a phone that fails to parse is only trimmed, and the
// email trim+lowercase must happen first so a padded variant of a registered
// address reaches the duplicate check instead of dying on the email rule.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = domain.NormalizeEmail(r.Email)
	r.Address = strings.TrimSpace(r.Address)
	r.Image = strings.TrimSpace(r.Image)

	if num, err := parsePhone(r.Phone); err == nil {
		r.Phone = phonenumbers.Format(num, phonenumbers.E164)
	} else {
		r.Phone = strings.TrimSpace(r.Phone)
	}
}

func (r *RegisterRequest) Validate() error {
	return validateStruct(r)
}

func (r RegisterRequest) ToInput() auth.RegisterInput {
	return auth.RegisterInput{
		Name:       r.Name,
		Phone:      r.Phone,
		Email:      r.Email,
		Password:   r.Password,
		Address:    r.Address,
		Image:      r.Image,
		IsBusiness: r.IsBusiness,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Normalize mirrors the registration-side email normalization so the same
// padded variant that can register can also log in.
func (r *LoginRequest) Normalize() {
	r.Email = domain.NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	return validateStruct(r)
}

// parsePhone accepts E.164 directly and falls back to the default region for
// national formats.
func parsePhone(raw string) (*phonenumbers.PhoneNumber, error) {
	raw = strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return nil, err
	}
	if !phonenumbers.IsValidNumber(num) {
		return nil, phonenumbers.ErrNotANumber
	}
	return num, nil
}
