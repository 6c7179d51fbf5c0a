package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/flarexio/faqbot/auth"
)

const (
	userKeyPrefix  = keyPrefix + "user:"  // faqbot:user:{id} -> user JSON
	emailKeyPrefix = keyPrefix + "email:" // faqbot:email:{email} -> user id
)

type UserRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	ok, err := r.client.SetNX(ctx, emailKeyPrefix+user.Email, user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve email: %w", err)
	}

	if !ok {
		return auth.ErrEmailTaken
	}

	if err := r.client.Set(ctx, userKeyPrefix+user.ID, data, 0).Err(); err != nil {
		r.client.Del(ctx, emailKeyPrefix+user.Email)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (auth.User, error) {
	data, err := r.client.Get(ctx, userKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.User{}, auth.ErrUserNotFound
	}

	if err != nil {
		return auth.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	var user auth.User
	if err := json.Unmarshal(data, &user); err != nil {
		return auth.User{}, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	id, err := r.client.Get(ctx, emailKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return auth.User{}, auth.ErrUserNotFound
	}

	if err != nil {
		return auth.User{}, fmt.Errorf("failed to get user id: %w", err)
	}

	return r.FindByID(ctx, id)
}
