package service

import (
	"context"
	"errors"
	"fmt"

	"dojo/internal/auth"
	"dojo/internal/models"
	"dojo/internal/repository"
	"dojo/internal/serializer"
	"dojo/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "No active account found with the given credentials"

// AccountService covers registration, token issuance and account removal.
type AccountService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenIssuer
	store    storage.Gateway
}

func NewAccountService(userRepo repository.UserRepository, tokens *auth.TokenIssuer, store storage.Gateway) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		tokens:   tokens,
		store:    store,
	}
}

// Register validates the request and creates the user with a bcrypt hash.
// Nothing is stored when any check fails.
func (s *AccountService) Register(ctx context.Context, in serializer.RegisterInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	taken := map[string]string{}
	exists, err := s.userRepo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		taken["username"] = "A user with that username already exists."
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		taken["email"] = "A user with that email already exists."
	}
	if len(taken) > 0 {
		return nil, models.NewFieldErrors(taken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues an access/refresh pair.
func (s *AccountService) Login(ctx context.Context, username, password string) (*auth.Pair, error) {
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewUnauthorizedError(invalidCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", models.NewFieldError("refresh", "This field is required.")
	}
	claims, err := s.tokens.Verify(ctx, refreshToken, auth.TypeRefresh)
	if err != nil {
		return "", TokenError(err)
	}
	user, err := s.Authenticate(ctx, claims)
	if err != nil {
		return "", err
	}
	access, err := s.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return access, nil
}

// Authenticate resolves the subject of verified claims to a stored user.
// Tokens of deleted accounts are rejected as unauthorized.
func (s *AccountService) Authenticate(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("User not found")
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the caller's access token and, when given, a refresh token
// belonging to the same user.
func (s *AccountService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, access); err != nil {
		return models.NewInternalError(fmt.Errorf("revoke access token: %w", err))
	}
	if refreshToken == "" {
		return nil
	}

	refresh, err := s.tokens.Verify(ctx, refreshToken, auth.TypeRefresh)
	if err != nil {
		return TokenError(err)
	}
	if refresh.Subject != access.Subject {
		return models.NewForbiddenError("Refresh token belongs to another user")
	}
	if err := s.tokens.Revoke(ctx, refresh); err != nil {
		return models.NewInternalError(fmt.Errorf("revoke refresh token: %w", err))
	}
	return nil
}

func (s *AccountService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// DeleteAccount removes the user with everything they own, then their blobs.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	blobs, err := s.userRepo.DeleteCascade(ctx, userID)
	if err != nil {
		return err
	}
	for _, url := range blobs {
		storage.DeleteQuietly(ctx, s.store, url)
	}
	return nil
}

// TokenError maps token verification failures to 401 errors.
func TokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrRevoked):
		return models.NewUnauthorizedError("Token is blacklisted")
	case errors.Is(err, auth.ErrWrongType):
		return models.NewUnauthorizedError("Token has wrong type")
	default:
		return models.NewUnauthorizedError("Token is invalid or expired")
	}
}
