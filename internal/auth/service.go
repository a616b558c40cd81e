package auth

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// AccountCreator creates accounts. It is implemented by user.UserService.
type AccountCreator interface {
	CreateUser(ctx context.Context, sess appctx.Context, in user.NewUser) (*entity.User, error)
}

// WelcomeMailer queues the welcome mail through scope. It is implemented
// by mail.Queue.
type WelcomeMailer interface {
	QueueWelcome(ctx context.Context, scope *database.Scope, receiver, name string) error
}

// Service implements the login and registration use cases.
type Service struct {
	verifier *Verifier
	codec    *TokenCodec
	accounts AccountCreator
	mailer   WelcomeMailer
}

func NewService(verifier *Verifier, codec *TokenCodec, accounts AccountCreator, mailer WelcomeMailer) *Service {
	return &Service{verifier: verifier, codec: codec, accounts: accounts, mailer: mailer}
}

// Login verifies the credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, sess appctx.Context, dto LoginDTO) (TokenPairDTO, error) {
	u, err := s.verifier.VerifyLogin(ctx, sess, dto.Email, dto.Password)
	if err != nil {
		return TokenPairDTO{}, err
	}
	pair, err := s.codec.IssuePair(u.ID)
	if err != nil {
		return TokenPairDTO{}, err
	}
	return toPairDTO(pair), nil
}

// Register creates the account and queues the welcome mail in one
// transaction, then issues a token pair. The mail worker is woken only
// after the commit.
func (s *Service) Register(ctx context.Context, sess appctx.Context, dto RegisterDTO) (TokenPairDTO, error) {
	var created *entity.User
	err := sess.Scope().InTx(ctx, func(ctx context.Context) error {
		u, err := s.accounts.CreateUser(ctx, sess, user.NewUser{
			Email:     dto.Email,
			Password:  dto.Password,
			FirstName: dto.FirstName,
			LastName:  dto.LastName,
		})
		if err != nil {
			return err
		}
		created = u
		return s.mailer.QueueWelcome(ctx, sess.Scope(), u.Email, u.FirstName)
	})
	if err != nil {
		return TokenPairDTO{}, err
	}
	pair, err := s.codec.IssuePair(created.ID)
	if err != nil {
		return TokenPairDTO{}, err
	}
	return toPairDTO(pair), nil
}
