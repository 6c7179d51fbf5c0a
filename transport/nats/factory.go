package nats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/faqbot"
)

// RequestTimeout bounds a request when the caller's context has no deadline.
// Answering a cold query includes indexing the corpus.
var RequestTimeout = 5 * time.Minute

func MakeEndpoints(nc *nats.Conn, prefix string) *faqbot.EndpointSet {
	return &faqbot.EndpointSet{
		Query:   QueryEndpoint(nc, prefix+".query"),
		Reindex: ReindexEndpoint(nc, prefix+".reindex"),
		State:   StateEndpoint(nc, prefix+".state"),
	}
}

func requestMsg(ctx context.Context, nc *nats.Conn, msg *nats.Msg) (*nats.Msg, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
	}

	resp, err := nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := Error(resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func QueryEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(faqbot.QueryRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		msg := nats.NewMsg(topic)
		msg.Data = data

		if userID, ok := ctx.Value(faqbot.UserID).(string); ok {
			msg.Header.Set("user_id", userID)
		}

		resp, err := requestMsg(ctx, nc, msg)
		if err != nil {
			return nil, err
		}

		var result faqbot.QueryResponse
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, err
		}

		return result, nil
	}
}

func ReindexEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		resp, err := requestMsg(ctx, nc, nats.NewMsg(topic))
		if err != nil {
			return nil, err
		}

		var result faqbot.ReindexResponse
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, err
		}

		return result, nil
	}
}

func StateEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		resp, err := requestMsg(ctx, nc, nats.NewMsg(topic))
		if err != nil {
			return nil, err
		}

		var result faqbot.StateResponse
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, err
		}

		return result, nil
	}
}

var knownErrors = []error{
	faqbot.ErrInvalidQuery,
	faqbot.ErrQueryFailed,
	faqbot.ErrConfig,
	faqbot.ErrLoad,
	faqbot.ErrEmbedding,
	faqbot.ErrRetrieval,
	faqbot.ErrIndex,
}

// Error decodes a micro service error reply. Well known failures map back to
// the sentinel errors of the faqbot package.
func Error(msg *nats.Msg) error {
	if msg == nil {
		return errors.New("nil message")
	}

	code := msg.Header.Get(micro.ErrorCodeHeader)
	if code == "" {
		return nil
	}

	description := msg.Header.Get(micro.ErrorHeader)
	if description == "" {
		description = "unknown error"
	}

	for _, known := range knownErrors {
		if description == known.Error() {
			return known
		}
	}

	return errors.New(code + ":" + description)
}
