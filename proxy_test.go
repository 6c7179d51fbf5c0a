package faqbot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubService struct {
	answer string
	err    error
	state  State
}

func (s *stubService) Query(ctx context.Context, query string) (string, error) {
	return s.answer, s.err
}

func (s *stubService) Reindex(ctx context.Context) (int, error) {
	return 7, s.err
}

func (s *stubService) State(ctx context.Context) (State, error) {
	return s.state, nil
}

func (s *stubService) Documents(ctx context.Context) (int, error) {
	return 42, nil
}

func (s *stubService) Close() error {
	return nil
}

func TestProxyMiddleware(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	endpoints := MakeEndpoints(&stubService{answer: "8 AM", state: StateReady})
	svc := ProxyMiddleware(&endpoints)(nil)

	answer, err := svc.Query(ctx, "When does the library open?")
	assert.NoError(err)
	assert.Equal("8 AM", answer)

	n, err := svc.Reindex(ctx)
	assert.NoError(err)
	assert.Equal(7, n)

	state, err := svc.State(ctx)
	assert.NoError(err)
	assert.Equal(StateReady, state)

	documents, err := svc.Documents(ctx)
	assert.NoError(err)
	assert.Equal(42, documents)

	assert.Error(svc.Close())
}

func TestProxyMiddlewarePropagatesErrors(t *testing.T) {
	endpoints := MakeEndpoints(&stubService{err: ErrQueryFailed})
	svc := ProxyMiddleware(&endpoints)(nil)

	_, err := svc.Query(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestQueryEndpointRejectsUnknownRequest(t *testing.T) {
	endpoint := QueryEndpoint(&stubService{})

	_, err := endpoint(context.Background(), "raw string")
	assert.Error(t, err)
}
