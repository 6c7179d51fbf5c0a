package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service manages accounts and session tokens.
type Service interface {
	Signup(ctx context.Context, name, email, password string) (User, error)

	// Login returns a signed session token for valid credentials.
	Login(ctx context.Context, email, password string) (string, User, error)

	// Verify resolves a session token to its user.
	Verify(ctx context.Context, token string) (User, error)
}

type ServiceMiddleware func(Service) Service

func NewService(cfg Config, users Repository) (Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	return &service{
		users: users,
		cfg:   cfg,
		log: zap.L().With(
			zap.String("service", "auth"),
		),
		now: time.Now,
	}, nil
}

type service struct {
	users Repository
	cfg   Config
	log   *zap.Logger
	now   func() time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (svc *service) Signup(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    svc.now(),
	}

	if err := svc.users.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user.Public(), nil
}

func (svc *service) Login(ctx context.Context, email, password string) (string, User, error) {
	user, err := svc.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", User{}, ErrInvalidCredentials
		}

		return "", User{}, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	now := svc.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(svc.cfg.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(svc.cfg.Secret))
	if err != nil {
		return "", User{}, err
	}

	return token, user.Public(), nil
}

func (svc *service) Verify(ctx context.Context, tokenString string) (User, error) {
	if tokenString == "" {
		return User{}, ErrUnauthorized
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}

		return []byte(svc.cfg.Secret), nil
	})
	if err != nil {
		svc.log.Debug(err.Error(), zap.String("action", "verify"))
		return User{}, ErrUnauthorized
	}

	if claims.UserID == "" {
		return User{}, ErrUnauthorized
	}

	user, err := svc.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return User{}, err
	}

	return user.Public(), nil
}
