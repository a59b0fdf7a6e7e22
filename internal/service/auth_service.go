package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
)

// AuthService handles registration, login, and token issuance
type AuthService struct {
	userRepo   domain.UserRepository
	jwtSecret  []byte
	jwtExpiry  time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, jwtSecret string, jwtExpiry time.Duration, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		jwtExpiry:  jwtExpiry,
		bcryptCost: bcryptCost,
	}
}

// RegisterInput contains input for creating an account
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register validates the input, checks for conflicts, and creates the user.
// Returns the created user and a signed session token.
func (s *AuthService) Register(input RegisterInput) (*domain.User, string, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if err := domain.ValidateRegistration(username, email, input.Password, input.ConfirmPassword); err != nil {
		return nil, "", err
	}

	usernameTaken, emailTaken, err := s.userRepo.FindConflict(username, email)
	if err != nil {
		return nil, "", err
	}
	if usernameTaken {
		return nil, "", domain.ErrUsernameTaken
	}
	if emailTaken {
		return nil, "", domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.Create(&domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and returns the user and a signed session
// token. Unknown identifiers and wrong passwords both report
// domain.ErrInvalidCredentials so callers cannot probe for accounts.
func (s *AuthService) Login(usernameOrEmail, password string) (*domain.User, string, error) {
	identifier := strings.TrimSpace(usernameOrEmail)
	if identifier == "" || password == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsernameOrEmail(identifier)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser loads a user by ID
func (s *AuthService) GetUser(userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(userID)
}

func (s *AuthService) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
