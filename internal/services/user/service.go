package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"grubmarket/internal/auth"
	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

// Store is the persistence boundary of the account domain. GetUserByEmail and
// GetUserByID return ErrNotFound for absent accounts; CreateUser returns
// ErrEmailTaken on a duplicate email even when a pre-check raced past it.
// UpsertVerification keeps at most one pending code per user; VerifyUserByCode
// redeems a code (marking the user verified, discarding the code) and returns
// ErrVerificationNotFound for unknown codes.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	UpsertVerification(ctx context.Context, userID int64, code string) error
	VerifyUserByCode(ctx context.Context, code string) (int64, error)
}

// Service handles registration, login and profile management.
type Service struct {
	store  Store
	tokens *auth.TokenIssuer
	logger *logger.Logger
}

// NewService creates a user service.
func NewService(store Store, tokens *auth.TokenIssuer, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		logger: log,
	}
}

// CreateAccount registers a new account with a hashed password. The email
// must not already have an account.
func (s *Service) CreateAccount(ctx context.Context, req *models.CreateAccountRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role, _ := models.ParseRole(req.Role)
	u := &models.User{
		Email:    req.Email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	if err := s.issueVerification(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("account_created", "New account registered", "", map[string]interface{}{
		"user_id": u.ID,
		"role":    u.Role,
	})
	return u, nil
}

// Login verifies the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token}, nil
}

// Profile returns the account for the given id.
func (s *Service) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// EditProfile applies a partial update to the actor's own account. A new
// password is rehashed before it is stored; a new email drops the verified
// flag until its code is redeemed.
func (s *Service) EditProfile(ctx context.Context, actor *models.User, req *models.EditProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	u, err := s.store.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	emailChanged := false
	if req.Email != nil && *req.Email != u.Email {
		if _, err := s.store.GetUserByEmail(ctx, *req.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		u.Email = *req.Email
		u.Verified = false
		emailChanged = true
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.Password = string(hash)
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	if emailChanged {
		if err := s.issueVerification(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// VerifyEmail redeems a verification code, marking the owning account as
// verified. Codes are single-use.
func (s *Service) VerifyEmail(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}

	userID, err := s.store.VerifyUserByCode(ctx, code)
	if err != nil {
		return err
	}

	s.logger.Info("email_verified", "Account email verified", "", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// issueVerification replaces the user's pending verification code with a
// fresh one. The code is logged in place of an outbound email.
func (s *Service) issueVerification(ctx context.Context, u *models.User) error {
	code := uuid.NewString()
	if err := s.store.UpsertVerification(ctx, u.ID, code); err != nil {
		return err
	}

	s.logger.Info("verification_issued", "Verification code issued", "", map[string]interface{}{
		"user_id": u.ID,
		"code":    code,
	})
	return nil
}

// GetUserByID resolves an account by id. It satisfies the authentication
// middleware's resolver.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}
