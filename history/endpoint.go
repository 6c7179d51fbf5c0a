package history

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	Create      endpoint.Endpoint
	List        endpoint.Endpoint
	Suggestions endpoint.Endpoint
}

func MakeEndpoints(svc Service) EndpointSet {
	return EndpointSet{
		Create:      CreateEndpoint(svc),
		List:        ListEndpoint(svc),
		Suggestions: SuggestionsEndpoint(svc),
	}
}

type CreateRequest struct {
	UserID   string `json:"-"`
	Query    string `json:"query"`
	Response string `json:"response"`
}

type RecordResponse struct {
	History Record `json:"history"`
}

func CreateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(CreateRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		record, err := svc.Create(ctx, Record{
			UserID:   req.UserID,
			Query:    req.Query,
			Response: req.Response,
		})
		if err != nil {
			return nil, err
		}

		return RecordResponse{record}, nil
	}
}

type ListResponse struct {
	History []Record `json:"history"`
}

// ListEndpoint takes the user ID as its request.
func ListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		userID, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		records, err := svc.List(ctx, userID)
		if err != nil {
			return nil, err
		}

		return ListResponse{records}, nil
	}
}

type SuggestionsRequest struct {
	Filter string `form:"q" json:"q"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func SuggestionsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SuggestionsRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		suggestions, err := svc.Suggestions(ctx, req.Filter)
		if err != nil {
			return nil, err
		}

		return SuggestionsResponse{suggestions}, nil
	}
}
