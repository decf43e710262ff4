package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	otpKeyPrefix = "otp:"
	// Keys outlive expires_at so a late verify reports expiry instead of a missing code.
	otpEvictionGrace = 10 * time.Minute
)

// putIfIdleScript: ARGV = now, cooldown, code, expires_at, evict_at (unix ms).
// Returns -1 once written, otherwise the remaining cooldown in ms.
var putIfIdleScript = redis.NewScript(`
local current = redis.call("HMGET", KEYS[1], "created_at", "expires_at")
local now = tonumber(ARGV[1])
if current[1] and current[2] then
  local created = tonumber(current[1])
  local cooldown = tonumber(ARGV[2])
  if now <= tonumber(current[2]) and now - created < cooldown then
    return created + cooldown - now
  end
end
redis.call("DEL", KEYS[1])
redis.call("HSET", KEYS[1], "code", ARGV[3], "created_at", ARGV[1], "expires_at", ARGV[4], "attempts", 0)
redis.call("PEXPIREAT", KEYS[1], ARGV[5])
return -1
`)

// consumeScript: ARGV = code, now (unix ms), max attempts.
// Returns {outcome, attempts} with outcome numbered as ConsumeOutcome.
var consumeScript = redis.NewScript(`
local current = redis.call("HMGET", KEYS[1], "code", "expires_at", "attempts")
if not current[1] then
  return {0, 0}
end
local attempts = tonumber(current[3]) or 0
if tonumber(ARGV[2]) > tonumber(current[2]) then
  redis.call("DEL", KEYS[1])
  return {2, attempts}
end
if attempts >= tonumber(ARGV[3]) then
  redis.call("DEL", KEYS[1])
  return {3, attempts}
end
if current[1] == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return {1, attempts}
end
return {4, redis.call("HINCRBY", KEYS[1], "attempts", 1)}
`)

type redisOTPStore struct {
	client redis.UniversalClient
}

func NewRedisOTPStore(client redis.UniversalClient) OTPStore {
	return &redisOTPStore{client: client}
}

func (s *redisOTPStore) Get(ctx context.Context, address string) (*OTPRecord, error) {
	values, err := s.client.HGetAll(ctx, otpKey(address)).Result()
	if err != nil {
		return nil, fmt.Errorf("read otp: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	createdAt, err := strconv.ParseInt(values["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode otp created_at: %w", err)
	}
	expiresAt, err := strconv.ParseInt(values["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode otp expires_at: %w", err)
	}
	attempts, err := strconv.Atoi(values["attempts"])
	if err != nil {
		return nil, fmt.Errorf("decode otp attempts: %w", err)
	}
	return &OTPRecord{
		Address:   address,
		Code:      values["code"],
		CreatedAt: time.UnixMilli(createdAt),
		ExpiresAt: time.UnixMilli(expiresAt),
		Attempts:  attempts,
	}, nil
}

func (s *redisOTPStore) Put(ctx context.Context, record OTPRecord) error {
	key := otpKey(record.Address)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"code", record.Code,
			"created_at", record.CreatedAt.UnixMilli(),
			"expires_at", record.ExpiresAt.UnixMilli(),
			"attempts", record.Attempts,
		)
		pipe.PExpireAt(ctx, key, record.ExpiresAt.Add(otpEvictionGrace))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (s *redisOTPStore) PutIfIdle(ctx context.Context, record OTPRecord, cooldown time.Duration) (bool, time.Duration, error) {
	wait, err := putIfIdleScript.Run(ctx, s.client, []string{otpKey(record.Address)},
		record.CreatedAt.UnixMilli(),
		cooldown.Milliseconds(),
		record.Code,
		record.ExpiresAt.UnixMilli(),
		record.ExpiresAt.Add(otpEvictionGrace).UnixMilli(),
	).Int64()
	if err != nil {
		return false, 0, fmt.Errorf("store otp: %w", err)
	}
	if wait >= 0 {
		return false, time.Duration(wait) * time.Millisecond, nil
	}
	return true, 0, nil
}

func (s *redisOTPStore) Consume(ctx context.Context, address string, code string, now time.Time, maxAttempts int) (ConsumeResult, error) {
	values, err := consumeScript.Run(ctx, s.client, []string{otpKey(address)}, code, now.UnixMilli(), maxAttempts).Int64Slice()
	if err != nil {
		return ConsumeResult{}, fmt.Errorf("consume otp: %w", err)
	}
	if len(values) != 2 {
		return ConsumeResult{}, errors.New("consume otp: unexpected script reply")
	}
	return ConsumeResult{Outcome: ConsumeOutcome(values[0]), Attempts: int(values[1])}, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, address string) error {
	if err := s.client.Del(ctx, otpKey(address)).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

func otpKey(address string) string {
	return otpKeyPrefix + address
}
