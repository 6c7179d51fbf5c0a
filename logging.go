package faqbot

import (
	"context"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "faqbot"),
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

func (mw *loggingMiddleware) Close() error {
	log := mw.log.With(
		zap.String("action", "close"),
	)

	err := mw.next.Close()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("service closed")
	return nil
}

func (mw *loggingMiddleware) Query(ctx context.Context, query string) (string, error) {
	log := mw.log.With(
		zap.String("action", "query"),
		zap.String("query", query),
	)

	if userID, ok := ctx.Value(UserID).(string); ok {
		log = log.With(
			zap.String("user_id", userID),
		)
	}

	answer, err := mw.next.Query(ctx, query)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("query answered", zap.Int("length", len(answer)))
	return answer, nil
}

func (mw *loggingMiddleware) Reindex(ctx context.Context) (int, error) {
	log := mw.log.With(
		zap.String("action", "reindex"),
	)

	n, err := mw.next.Reindex(ctx)
	if err != nil {
		log.Error(err.Error())
		return 0, err
	}

	log.Info("corpus reindexed", zap.Int("documents", n))
	return n, nil
}

func (mw *loggingMiddleware) Documents(ctx context.Context) (int, error) {
	n, err := mw.next.Documents(ctx)
	if err != nil {
		mw.log.Error(err.Error(), zap.String("action", "documents"))
		return 0, err
	}

	return n, nil
}

func (mw *loggingMiddleware) State(ctx context.Context) (State, error) {
	state, err := mw.next.State(ctx)
	if err != nil {
		mw.log.Error(err.Error(), zap.String("action", "state"))
		return state, err
	}

	return state, nil
}
