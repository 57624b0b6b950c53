package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "otp:"

// ErrOTPNotFound is returned when no OTP exists (or it expired) for an email.
var ErrOTPNotFound = errors.New("otp not found")

// OTPRepository stores one-time passwords in Redis with a TTL. Expiry is
// handled by Redis itself; a missing key means expired or never issued.
type OTPRepository interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

type otpRepository struct {
	client *redis.Client
}

func NewOTPRepository(client *redis.Client) OTPRepository {
	return &otpRepository{client: client}
}

func (r *otpRepository) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	return r.client.Set(ctx, otpKeyPrefix+email, code, ttl).Err()
}

func (r *otpRepository) Get(ctx context.Context, email string) (string, error) {
	code, err := r.client.Get(ctx, otpKeyPrefix+email).Result()
	if err == redis.Nil {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (r *otpRepository) Delete(ctx context.Context, email string) error {
	return r.client.Del(ctx, otpKeyPrefix+email).Err()
}
