package auth

import (
	"context"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "auth"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Signup(ctx context.Context, name, email, password string) (User, error) {
	log := mw.log.With(
		zap.String("action", "signup"),
		zap.String("email", email),
	)

	user, err := mw.next.Signup(ctx, name, email, password)
	if err != nil {
		log.Error(err.Error())
		return User{}, err
	}

	log.Info("user signed up", zap.String("user_id", user.ID))
	return user, nil
}

func (mw *loggingMiddleware) Login(ctx context.Context, email, password string) (string, User, error) {
	log := mw.log.With(
		zap.String("action", "login"),
		zap.String("email", email),
	)

	token, user, err := mw.next.Login(ctx, email, password)
	if err != nil {
		log.Error(err.Error())
		return "", User{}, err
	}

	log.Info("user logged in", zap.String("user_id", user.ID))
	return token, user, nil
}

func (mw *loggingMiddleware) Verify(ctx context.Context, token string) (User, error) {
	log := mw.log.With(
		zap.String("action", "verify"),
	)

	user, err := mw.next.Verify(ctx, token)
	if err != nil {
		log.Warn(err.Error())
		return User{}, err
	}

	return user, nil
}
