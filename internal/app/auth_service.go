package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"learnhub/internal/domain"
)

// SignUpRequest carries the fields a new account needs.
type SignUpRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	FullName string      `json:"fullName" validate:"required"`
	Role     domain.Role `json:"role" validate:"required,oneof=teacher student"`
}

type tokenClaims struct {
	Email    string      `json:"email"`
	FullName string      `json:"name"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService signs users in and issues bearer tokens.
type AuthService struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAuthService(users UserStore, secret string, ttl time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		log:    log,
		now:    time.Now,
	}
}

// HashPassword hashes a plain password for storage.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// SignIn checks credentials and returns the profile with a fresh token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.Profile, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Profile{}, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Profile{}, "", &domain.PersistenceError{Op: "get user", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Profile{}, "", domain.ErrInvalidCredentials
	}
	token, err := s.IssueToken(user.Profile)
	if err != nil {
		return domain.Profile{}, "", err
	}
	s.log.WithField("user_id", user.ID).Info("signed in")
	return user.Profile, token, nil
}

// SignUp registers a new account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (domain.Profile, string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := domain.Struct(req); err != nil {
		return domain.Profile{}, "", err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return domain.Profile{}, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.Profile{}, "", &domain.PersistenceError{Op: "get user", Err: err}
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		return domain.Profile{}, "", err
	}
	user, err := s.users.Create(ctx, domain.User{
		Profile: domain.Profile{
			ID:       uuid.NewString(),
			Email:    req.Email,
			FullName: strings.TrimSpace(req.FullName),
			Role:     req.Role,
		},
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return domain.Profile{}, "", err
		}
		return domain.Profile{}, "", &domain.PersistenceError{Op: "create user", Err: err}
	}
	token, err := s.IssueToken(user.Profile)
	if err != nil {
		return domain.Profile{}, "", err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("signed up")
	return user.Profile, token, nil
}

// IssueToken signs an HS256 token carrying the profile.
func (s *AuthService) IssueToken(p domain.Profile) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Email:    p.Email,
		FullName: p.FullName,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate parses a bearer token back into the profile it was issued for.
func (s *AuthService) Authenticate(token string) (domain.Profile, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return domain.Profile{}, domain.ErrUnauthenticated
	}
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return domain.Profile{}, domain.ErrUnauthenticated
	}
	return domain.Profile{
		ID:       claims.Subject,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     claims.Role,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
