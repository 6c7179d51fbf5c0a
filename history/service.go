package history

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service records answered queries per user. The query pipeline never
// touches it; clients save a record after receiving an answer.
type Service interface {
	Create(ctx context.Context, record Record) (Record, error)
	List(ctx context.Context, userID string) ([]Record, error)
	Suggestions(ctx context.Context, filter string) ([]string, error)
}

type ServiceMiddleware func(Service) Service

func NewService(cfg Config, records Repository) Service {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}

	if cfg.Suggestions <= 0 {
		cfg.Suggestions = DefaultSuggestions
	}

	return &service{
		records: records,
		cfg:     cfg,
		now:     time.Now,
	}
}

type service struct {
	records Repository
	cfg     Config
	now     func() time.Time
}

func (svc *service) Create(ctx context.Context, record Record) (Record, error) {
	record.Query = strings.TrimSpace(record.Query)

	if record.Query == "" || record.Response == "" || record.UserID == "" {
		return Record{}, ErrInvalidRecord
	}

	record.ID = uuid.New().String()
	record.CreatedAt = svc.now()

	if err := svc.records.Append(ctx, record); err != nil {
		return Record{}, err
	}

	return record, nil
}

func (svc *service) List(ctx context.Context, userID string) ([]Record, error) {
	if userID == "" {
		return nil, ErrInvalidRecord
	}

	return svc.records.Recent(ctx, userID, svc.cfg.Limit)
}

func (svc *service) Suggestions(ctx context.Context, filter string) ([]string, error) {
	return svc.records.Popular(ctx, strings.TrimSpace(filter), svc.cfg.Suggestions)
}
