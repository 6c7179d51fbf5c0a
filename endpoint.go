package faqbot

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	Query   endpoint.Endpoint
	Reindex endpoint.Endpoint
	State   endpoint.Endpoint
}

func MakeEndpoints(svc Service) EndpointSet {
	return EndpointSet{
		Query:   QueryEndpoint(svc),
		Reindex: ReindexEndpoint(svc),
		State:   StateEndpoint(svc),
	}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Response string `json:"response"`
}

func QueryEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(QueryRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		answer, err := svc.Query(ctx, req.Query)
		if err != nil {
			return nil, err
		}

		return QueryResponse{answer}, nil
	}
}

type ReindexResponse struct {
	Documents int `json:"documents"`
}

func ReindexEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		n, err := svc.Reindex(ctx)
		if err != nil {
			return nil, err
		}

		return ReindexResponse{n}, nil
	}
}

type StateResponse struct {
	State     State `json:"state"`
	Documents int   `json:"documents"`
}

func StateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		state, err := svc.State(ctx)
		if err != nil {
			return nil, err
		}

		n, err := svc.Documents(ctx)
		if err != nil {
			return nil, err
		}

		return StateResponse{state, n}, nil
	}
}
