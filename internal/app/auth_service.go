package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vortexkeep/internal/model"
	"vortexkeep/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
)

const minPasswordLength = 8

// Hash of a random password nobody knows. Compared against when login hits
// an unknown email so that path costs a bcrypt verification too.
var dummyPasswordHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("vortexkeep-dummy-credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}()

type UserStore interface {
	Create(user *model.User) error
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
}

type AuthService struct {
	users         UserStore
	jwtSecret     string
	jwtExpiration time.Duration
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(users UserStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Signup(input SignupInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existingByName, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameExists
	}

	existingByEmail, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login resolves a user by email and verifies the password. Unknown email and
// wrong password return the same error, and the unknown-email path still runs
// a bcrypt comparison so the two are not separable by response time either.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.users.GetByID(id)
}
