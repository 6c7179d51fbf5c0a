package history

import (
	"context"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "history"),
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

func (mw *loggingMiddleware) Create(ctx context.Context, record Record) (Record, error) {
	log := mw.log.With(
		zap.String("action", "create"),
		zap.String("user_id", record.UserID),
	)

	created, err := mw.next.Create(ctx, record)
	if err != nil {
		log.Error(err.Error())
		return Record{}, err
	}

	log.Info("history recorded", zap.String("record_id", created.ID))
	return created, nil
}

func (mw *loggingMiddleware) List(ctx context.Context, userID string) ([]Record, error) {
	log := mw.log.With(
		zap.String("action", "list"),
		zap.String("user_id", userID),
	)

	records, err := mw.next.List(ctx, userID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("history listed", zap.Int("count", len(records)))
	return records, nil
}

func (mw *loggingMiddleware) Suggestions(ctx context.Context, filter string) ([]string, error) {
	log := mw.log.With(
		zap.String("action", "suggestions"),
		zap.String("filter", filter),
	)

	suggestions, err := mw.next.Suggestions(ctx, filter)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Debug("suggestions listed", zap.Int("count", len(suggestions)))
	return suggestions, nil
}
