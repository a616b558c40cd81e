package user

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth/password"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// CreateUserDTO is the body of POST /user/.
type CreateUserDTO struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`
}

func (d CreateUserDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&d.Password, validation.Required, password.LengthRule),
		validation.Field(&d.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&d.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&d.Phone, validation.Length(0, 32)),
	)
}

// UpdateUserDTO is the body of PATCH /user/{user_id}/. Nil fields are
// left unchanged.
type UpdateUserDTO struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

func (d UpdateUserDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.FirstName, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&d.LastName, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&d.Phone, validation.Length(0, 32)),
	)
}

// apply copies the set fields onto u.
func (d UpdateUserDTO) apply(u *entity.User) {
	if d.FirstName != nil {
		u.FirstName = *d.FirstName
	}
	if d.LastName != nil {
		u.LastName = *d.LastName
	}
	if d.Phone != nil {
		u.Phone = d.Phone
	}
}

// SearchDTO holds the query parameters of GET /user/.
type SearchDTO struct {
	Keyword string `json:"keyword"`
	Email   string `json:"email"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

func (d SearchDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Limit, validation.Min(0), validation.Max(maxLimit)),
		validation.Field(&d.Offset, validation.Min(0)),
	)
}

func (d SearchDTO) filter() entity.SearchFilter {
	limit := d.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	return entity.SearchFilter{Keyword: d.Keyword, Email: d.Email, Limit: limit, Offset: d.Offset}
}

// SimpleUserDTO is the compact form used for the audit references.
type SimpleUserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// UserDTO is the public representation of a user. The password hash is
// never part of it.
type UserDTO struct {
	ID          int64          `json:"id"`
	Email       string         `json:"email"`
	FullName    string         `json:"full_name"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Phone       *string        `json:"phone"`
	CreatedAt   *time.Time     `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at"`
	CreatedUser *SimpleUserDTO `json:"created_user"`
	UpdatedUser *SimpleUserDTO `json:"updated_user"`
}

// UserListDTO is one page of a search.
type UserListDTO struct {
	Results []*UserDTO `json:"results"`
	Count   int        `json:"count"`
}

func toSimpleDTO(u *entity.User) *SimpleUserDTO {
	if u == nil {
		return nil
	}
	return &SimpleUserDTO{ID: u.ID, Email: u.Email, FullName: u.FullName()}
}

// ToDTO converts u. refs resolves created_by / updated_by when the
// caller eager loaded them; it may be nil.
func ToDTO(u *entity.User, refs map[int64]*entity.User) *UserDTO {
	out := &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
	if !u.CreatedAt.IsZero() {
		t := u.CreatedAt
		out.CreatedAt = &t
	}
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		out.UpdatedAt = &t
	}
	if u.CreatedBy != nil {
		out.CreatedUser = toSimpleDTO(refs[*u.CreatedBy])
	}
	if u.UpdatedBy != nil {
		out.UpdatedUser = toSimpleDTO(refs[*u.UpdatedBy])
	}
	return out
}
