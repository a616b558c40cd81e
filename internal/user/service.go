package user

import (
	"context"
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth/password"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// Repository is the persistence contract of the user resource.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, f entity.SearchFilter) ([]*entity.User, int, error)
}

// RepoFunc binds a Repository to the request scope.
type RepoFunc func(scope *database.Scope) Repository

// SQLRepo is the RepoFunc used in production.
func SQLRepo(scope *database.Scope) Repository { return userrepo.NewUserRepo(scope) }

var errEmailExists = apperror.Unprocessable("Email already exists")

// UserService implements the user use cases.
type UserService struct {
	repos  RepoFunc
	hasher password.Hasher
}

func NewUserService(repos RepoFunc, hasher password.Hasher) *UserService {
	if repos == nil {
		repos = SQLRepo
	}
	if hasher == nil {
		hasher = password.Bcrypt{Cost: password.DefaultCost}
	}
	return &UserService{repos: repos, hasher: hasher}
}

// Read loads a user or fails with a 404.
func (s *UserService) Read(ctx context.Context, sess appctx.Context, id int64) (*entity.User, error) {
	u, err := s.repos(sess.Scope()).GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, apperror.NotFound("User (%s) not found", strconv.FormatInt(id, 10))
	}
	return u, err
}

// ValidateUniqueEmail fails with a 422 when email belongs to a user other
// than excludeID. Pass 0 to exclude nobody.
func (s *UserService) ValidateUniqueEmail(ctx context.Context, sess appctx.Context, email string, excludeID int64) error {
	u, err := s.repos(sess.Scope()).GetByEmail(ctx, email)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return nil
	case err != nil:
		return err
	case u.ID != excludeID:
		return errEmailExists
	}
	return nil
}

// NewUser holds the fields needed to create an account.
type NewUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// CreateUser checks the email, hashes the password and inserts the row.
// It is shared by the user resource and registration.
func (s *UserService) CreateUser(ctx context.Context, sess appctx.Context, in NewUser) (*entity.User, error) {
	if err := s.ValidateUniqueEmail(ctx, sess, in.Email, 0); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, apperror.Validation(validation.Errors{"password": err})
		}
		return nil, err
	}
	u := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
	}
	if err := s.repos(sess.Scope()).Create(ctx, u); err != nil {
		if errors.Is(err, entity.ErrEmailTaken) {
			return nil, errEmailExists
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, sess appctx.Context, dto CreateUserDTO) (*UserDTO, error) {
	u, err := s.CreateUser(ctx, sess, NewUser{
		Email:     dto.Email,
		Password:  dto.Password,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Phone:     dto.Phone,
	})
	if err != nil {
		return nil, err
	}
	return s.present(ctx, sess, u)
}

func (s *UserService) Get(ctx context.Context, sess appctx.Context, id int64) (*UserDTO, error) {
	u, err := s.Read(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, sess, u)
}

// Update applies the set fields of dto to the user.
func (s *UserService) Update(ctx context.Context, sess appctx.Context, id int64, dto UpdateUserDTO) (*UserDTO, error) {
	u, err := s.Read(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	dto.apply(u)
	if err := s.repos(sess.Scope()).Update(ctx, u); err != nil {
		return nil, err
	}
	return s.present(ctx, sess, u)
}

func (s *UserService) Delete(ctx context.Context, sess appctx.Context, id int64) error {
	if _, err := s.Read(ctx, sess, id); err != nil {
		return err
	}
	err := s.repos(sess.Scope()).Delete(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return apperror.NotFound("User (%s) not found", strconv.FormatInt(id, 10))
	}
	return err
}

// Search returns one page of users with their creator and updater
// loaded in a single extra query.
func (s *UserService) Search(ctx context.Context, sess appctx.Context, dto SearchDTO) (*UserListDTO, error) {
	repo := s.repos(sess.Scope())
	users, total, err := repo.Search(ctx, dto.filter())
	if err != nil {
		return nil, err
	}
	refs, err := repo.GetByIDs(ctx, auditIDs(users...))
	if err != nil {
		return nil, err
	}
	out := &UserListDTO{Results: make([]*UserDTO, 0, len(users)), Count: total}
	for _, u := range users {
		out.Results = append(out.Results, ToDTO(u, refs))
	}
	return out, nil
}

func (s *UserService) present(ctx context.Context, sess appctx.Context, u *entity.User) (*UserDTO, error) {
	ids := auditIDs(u)
	if len(ids) == 0 {
		return ToDTO(u, nil), nil
	}
	refs, err := s.repos(sess.Scope()).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return ToDTO(u, refs), nil
}

// auditIDs collects the distinct created_by / updated_by ids.
func auditIDs(users ...*entity.User) []int64 {
	seen := map[int64]struct{}{}
	var ids []int64
	add := func(id *int64) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; ok {
			return
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	for _, u := range users {
		add(u.CreatedBy)
		add(u.UpdatedBy)
	}
	return ids
}
