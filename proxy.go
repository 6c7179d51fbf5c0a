package faqbot

import (
	"context"
	"errors"
)

// ProxyMiddleware turns an endpoint set, usually backed by a remote
// transport, into a Service. The wrapped service is ignored.
func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

func (mw *proxyMiddleware) Close() error {
	return errors.New("method not implemented")
}

func (mw *proxyMiddleware) Query(ctx context.Context, query string) (string, error) {
	resp, err := mw.endpoints.Query(ctx, QueryRequest{query})
	if err != nil {
		return "", err
	}

	result, ok := resp.(QueryResponse)
	if !ok {
		return "", errors.New("invalid response type")
	}

	return result.Response, nil
}

func (mw *proxyMiddleware) Reindex(ctx context.Context) (int, error) {
	resp, err := mw.endpoints.Reindex(ctx, nil)
	if err != nil {
		return 0, err
	}

	result, ok := resp.(ReindexResponse)
	if !ok {
		return 0, errors.New("invalid response type")
	}

	return result.Documents, nil
}

func (mw *proxyMiddleware) State(ctx context.Context) (State, error) {
	result, err := mw.state(ctx)
	if err != nil {
		return StateUninitialized, err
	}

	return result.State, nil
}

func (mw *proxyMiddleware) Documents(ctx context.Context) (int, error) {
	result, err := mw.state(ctx)
	if err != nil {
		return 0, err
	}

	return result.Documents, nil
}

func (mw *proxyMiddleware) state(ctx context.Context) (StateResponse, error) {
	resp, err := mw.endpoints.State(ctx, nil)
	if err != nil {
		return StateResponse{}, err
	}

	result, ok := resp.(StateResponse)
	if !ok {
		return StateResponse{}, errors.New("invalid response type")
	}

	return result, nil
}
