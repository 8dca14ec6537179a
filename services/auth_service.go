package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/Dosada05/chess-tournament/utils"
)

// RoleOrganizer is the only role allowed to mutate tournaments.
const RoleOrganizer = "organizer"

var ErrAuthInvalidCredentials = errors.New("invalid username or password")

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Principal is an authenticated account.
type Principal struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*Principal, error)
	Enabled() bool
}

type authService struct {
	username     string
	passwordHash string
	logger       *slog.Logger
}

// NewAuthService authenticates the single organizer account. An empty
// passwordHash disables login.
func NewAuthService(username, passwordHash string, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{username: username, passwordHash: passwordHash, logger: logger}
}

func (s *authService) Enabled() bool {
	return s.passwordHash != ""
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*Principal, error) {
	if !s.Enabled() {
		return nil, ErrAuthInvalidCredentials
	}
	if input.Username == "" || input.Password == "" {
		return nil, validationError("username and password are required")
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.username)) == 1
	passOK := utils.CheckPasswordHash(input.Password, s.passwordHash)
	if !userOK || !passOK {
		s.logger.Warn("organizer login rejected", slog.String("username", input.Username))
		return nil, ErrAuthInvalidCredentials
	}
	return &Principal{Username: s.username, Role: RoleOrganizer}, nil
}
