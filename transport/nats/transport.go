package nats

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go/micro"
	"go.uber.org/zap"

	"github.com/flarexio/faqbot"
)

func QueryHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req faqbot.QueryRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()

		userID := r.Headers().Get("user_id")
		if userID != "" {
			ctx = context.WithValue(ctx, faqbot.UserID, userID)
		}

		resp, err := endpoint(ctx, req)
		if err != nil {
			if errors.Is(err, faqbot.ErrInvalidQuery) {
				r.Error("400", faqbot.ErrInvalidQuery.Error(), nil)
				return
			}

			r.Error("500", faqbot.ErrQueryFailed.Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}

// failureKind reduces a pipeline error to its kind so replies never carry
// upstream causes.
func failureKind(err error) error {
	var stageErr *faqbot.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind
	}

	return faqbot.ErrIndex
}

func ReindexHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	log := zap.L().With(
		zap.String("transport", "nats"),
		zap.String("endpoint", "reindex"),
	)

	return func(r micro.Request) {
		ctx := context.Background()
		resp, err := endpoint(ctx, nil)
		if err != nil {
			log.Error(err.Error())
			r.Error("417", failureKind(err).Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}

func StateHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		ctx := context.Background()
		resp, err := endpoint(ctx, nil)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}
