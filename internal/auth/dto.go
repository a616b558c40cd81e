package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth/password"
)

// LoginDTO is the body of POST /auth/login/.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Email, validation.Required, is.Email),
		validation.Field(&d.Password, validation.Required),
	)
}

// RegisterDTO is the body of POST /auth/register/.
type RegisterDTO struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (d RegisterDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&d.Password, validation.Required, password.LengthRule),
		validation.Field(&d.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&d.LastName, validation.Required, validation.Length(1, 200)),
	)
}

// TokenPairDTO is returned by login and registration.
type TokenPairDTO struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func toPairDTO(p TokenPair) TokenPairDTO {
	return TokenPairDTO{Access: p.Access, Refresh: p.Refresh}
}
