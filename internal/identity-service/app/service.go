// Package app registers accounts, issues tokens and verifies them for peer
// services.
package app

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/identity-service/domain"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/store"
)

type Repository interface {
	auth.UserDirectory
	CreateAccount(ctx context.Context, a domain.Account) (domain.Account, error)
	FindAccountByUsername(ctx context.Context, tenantID, username string) (domain.Account, error)
}

const minPasswordLength = 8

type Service struct {
	tenantID      string
	adminTenantID string
	repo          Repository
	issuer        *auth.Issuer
	users         auth.Verifier
	admins        auth.Verifier
	cost          int
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService serves users of tenantID and admins of adminTenantID.
func NewService(tenantID, adminTenantID string, repo Repository, issuer *auth.Issuer, users, admins auth.Verifier, opts ...Option) *Service {
	s := &Service{
		tenantID:      tenantID,
		adminTenantID: adminTenantID,
		repo:          repo,
		issuer:        issuer,
		users:         users,
		admins:        admins,
		cost:          bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	Address     string
	PhoneNumber string
}

func (in RegisterInput) validate() error {
	switch {
	case strings.TrimSpace(in.Username) == "":
		return apperr.BadRequest("username is required")
	case in.Email == "":
		return apperr.BadRequest("email is required")
	case len(in.Password) < minPasswordLength:
		return apperr.BadRequest("password must be at least 8 characters")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperr.BadRequest("email is invalid")
	}
	return nil
}

// Register creates a user of the service tenant.
func (s *Service) Register(ctx context.Context, in RegisterInput) (auth.User, error) {
	return s.register(ctx, in, s.tenantID, auth.RoleUser)
}

// RegisterAdmin creates an admin of the platform tenant.
func (s *Service) RegisterAdmin(ctx context.Context, in RegisterInput) (auth.User, error) {
	return s.register(ctx, in, s.adminTenantID, auth.RoleAdmin)
}

func (s *Service) register(ctx context.Context, in RegisterInput, tenantID string, role auth.Role) (auth.User, error) {
	if err := in.validate(); err != nil {
		return auth.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return auth.User{}, apperr.Internal("Failed to hash password", err)
	}

	account, err := s.repo.CreateAccount(ctx, domain.Account{
		User: auth.User{
			TenantID: tenantID,
			Role:     role,
			Username: strings.TrimSpace(in.Username),
			Email:    in.Email,
			FullName: in.FullName,
		},
		PasswordHash: string(hash),
		Address:      in.Address,
		PhoneNumber:  in.PhoneNumber,
	})
	if errors.Is(err, store.ErrConflict) {
		return auth.User{}, apperr.Conflict("Username or email already exists", err)
	}
	if err != nil {
		return auth.User{}, apperr.Internal("Failed to register user", err)
	}
	return account.User, nil
}

type LoginResult struct {
	Token string
	User  auth.User
}

// Login issues a user token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	return s.login(ctx, s.tenantID, username, password)
}

// AdminLogin issues an admin token.
func (s *Service) AdminLogin(ctx context.Context, username, password string) (LoginResult, error) {
	return s.login(ctx, s.adminTenantID, username, password)
}

func (s *Service) login(ctx context.Context, tenantID, username, password string) (LoginResult, error) {
	if username == "" || password == "" {
		return LoginResult{}, apperr.BadRequest("username and password are required")
	}

	account, err := s.repo.FindAccountByUsername(ctx, tenantID, username)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, apperr.NotFound("User not found or invalid password")
	}
	if err != nil {
		return LoginResult{}, apperr.Internal("Failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, apperr.NotFound("User not found or invalid password")
	}

	token, err := s.issuer.Issue(account.User)
	if err != nil {
		return LoginResult{}, apperr.Internal("Failed to issue token", err)
	}
	return LoginResult{Token: token, User: account.User}, nil
}

// VerifyToken answers peer services that delegate user token checks.
func (s *Service) VerifyToken(ctx context.Context, token string) (auth.User, error) {
	return verify(ctx, s.users, token)
}

// VerifyAdminToken answers peer services that delegate admin token checks.
func (s *Service) VerifyAdminToken(ctx context.Context, token string) (auth.User, error) {
	return verify(ctx, s.admins, token)
}

func verify(ctx context.Context, v auth.Verifier, token string) (auth.User, error) {
	if token == "" {
		return auth.User{}, apperr.BadRequest("Token is required")
	}
	p, err := v.Verify(ctx, token)
	if auth.ReasonOf(err) == auth.ReasonUpstreamUnavailable {
		return auth.User{}, apperr.Internal("Failed to verify token", err)
	}
	if err != nil {
		return auth.User{}, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "Invalid token", Err: err}
	}
	return auth.User(p), nil
}
