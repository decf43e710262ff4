package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOTPStoreReplacesRecord(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryOTPStoreWithClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, OTPRecord{Address: "a@x.io", Code: "111111", CreatedAt: now, ExpiresAt: now.Add(time.Minute), Attempts: 3}))
	require.NoError(t, store.Put(ctx, OTPRecord{Address: "a@x.io", Code: "222222", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	record, err := store.Get(ctx, "a@x.io")
	require.NoError(t, err)
	require.Equal(t, "222222", record.Code)
	require.Equal(t, 0, record.Attempts)
	require.Equal(t, 1, store.Len())
}

func TestMemoryOTPStoreConsumeOutcomes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryOTPStoreWithClock(func() time.Time { return now })
	put := func(attempts int) {
		require.NoError(t, store.Put(ctx, OTPRecord{Address: "a@x.io", Code: "111111", CreatedAt: now, ExpiresAt: now.Add(time.Minute), Attempts: attempts}))
	}

	result, err := store.Consume(ctx, "a@x.io", "111111", now, 5)
	require.NoError(t, err)
	require.Equal(t, ConsumeMissing, result.Outcome)

	put(0)
	result, err = store.Consume(ctx, "a@x.io", "999999", now, 5)
	require.NoError(t, err)
	require.Equal(t, ConsumeResult{Outcome: ConsumeMismatch, Attempts: 1}, result)

	result, err = store.Consume(ctx, "a@x.io", "111111", now.Add(time.Minute+time.Millisecond), 5)
	require.NoError(t, err)
	require.Equal(t, ConsumeExpired, result.Outcome)
	require.Equal(t, 0, store.Len())

	put(5)
	result, err = store.Consume(ctx, "a@x.io", "111111", now, 5)
	require.NoError(t, err)
	require.Equal(t, ConsumeExhausted, result.Outcome)
	require.Equal(t, 0, store.Len())

	put(2)
	result, err = store.Consume(ctx, "a@x.io", "111111", now, 5)
	require.NoError(t, err)
	require.Equal(t, ConsumeResult{Outcome: ConsumeMatched, Attempts: 2}, result)
	require.Equal(t, 0, store.Len())
}

func TestMemoryOTPStoreConsumeIsAtomic(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryOTPStore()
	require.NoError(t, store.Put(ctx, OTPRecord{Address: "a@x.io", Code: "111111", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	var mu sync.Mutex
	outcomes := map[ConsumeOutcome]int{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.Consume(ctx, "a@x.io", "999999", now, 5)
			assert.NoError(t, err)
			mu.Lock()
			outcomes[result.Outcome]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 5, outcomes[ConsumeMismatch])
	require.Equal(t, 1, outcomes[ConsumeExhausted])
	require.Equal(t, 44, outcomes[ConsumeMissing])
}

func TestMemoryOTPStorePutIfIdle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryOTPStoreWithClock(func() time.Time { return now })
	record := func(code string, at time.Time) OTPRecord {
		return OTPRecord{Address: "a@x.io", Code: code, CreatedAt: at, ExpiresAt: at.Add(5 * time.Minute)}
	}

	stored, _, err := store.PutIfIdle(ctx, record("111111", now), time.Minute)
	require.NoError(t, err)
	require.True(t, stored)

	stored, wait, err := store.PutIfIdle(ctx, record("222222", now.Add(15*time.Second)), time.Minute)
	require.NoError(t, err)
	require.False(t, stored)
	require.Equal(t, 45*time.Second, wait)

	stored, _, err = store.PutIfIdle(ctx, record("333333", now.Add(time.Minute)), time.Minute)
	require.NoError(t, err)
	require.True(t, stored)

	current, err := store.Get(ctx, "a@x.io")
	require.NoError(t, err)
	require.Equal(t, "333333", current.Code)
}

func TestMemoryOTPStoreSweepsStaleRecords(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryOTPStoreWithClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, OTPRecord{Address: "old@x.io", Code: "111111", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	now = now.Add(time.Minute + otpEvictionGrace + time.Second)
	require.NoError(t, store.Put(ctx, OTPRecord{Address: "new@x.io", Code: "222222", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	record, err := store.Get(ctx, "old@x.io")
	require.NoError(t, err)
	require.Nil(t, record)
	require.Equal(t, 1, store.Len())
}

func TestOTPKey(t *testing.T) {
	require.Equal(t, "otp:a@x.io", otpKey("a@x.io"))
}
