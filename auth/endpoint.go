package auth

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	Signup endpoint.Endpoint
	Login  endpoint.Endpoint
	Verify endpoint.Endpoint
}

func MakeEndpoints(svc Service) EndpointSet {
	return EndpointSet{
		Signup: SignupEndpoint(svc),
		Login:  LoginEndpoint(svc),
		Verify: VerifyEndpoint(svc),
	}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	User User `json:"user"`
}

func SignupEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SignupRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		user, err := svc.Signup(ctx, req.Name, req.Email, req.Password)
		if err != nil {
			return nil, err
		}

		return UserResponse{user}, nil
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"-"`
	User  User   `json:"user"`
}

func LoginEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(LoginRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		token, user, err := svc.Login(ctx, req.Email, req.Password)
		if err != nil {
			return nil, err
		}

		return LoginResponse{token, user}, nil
	}
}

// VerifyEndpoint takes the raw session token as its request.
func VerifyEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		token, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		user, err := svc.Verify(ctx, token)
		if err != nil {
			return nil, err
		}

		return UserResponse{user}, nil
	}
}
