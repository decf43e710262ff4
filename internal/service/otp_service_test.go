package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rotkit/internal/repository"
	"rotkit/internal/service"
	"rotkit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const address = "shopper@example.com"

func newOTPService(codes ...string) (*service.OTPService, *repository.MemoryOTPStore, *testutil.FakeClock) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := repository.NewMemoryOTPStoreWithClock(clock.Now)
	generator := &testutil.FixedCodes{Codes: codes}
	return service.NewOTPService(store, generator, clock, nil, service.AuthConfig{}), store, clock
}

func TestOTPVerifySucceedsOnceThenNotFound(t *testing.T) {
	ctx := context.Background()
	otps, store, _ := newOTPService("482913")

	code, err := otps.Issue(ctx, address)
	require.NoError(t, err)
	require.Equal(t, "482913", code)

	result, err := otps.Verify(ctx, address, code)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0, store.Len())

	_, err = otps.Verify(ctx, address, code)
	require.ErrorIs(t, err, service.ErrOTPNotFound)
}

func TestOTPVerifyWithoutRecordIsNotFound(t *testing.T) {
	otps, _, _ := newOTPService()
	_, err := otps.Verify(context.Background(), address, "123456")
	require.ErrorIs(t, err, service.ErrOTPNotFound)
}

func TestOTPInvalidCodeReportsAttemptsLeft(t *testing.T) {
	ctx := context.Background()
	otps, _, _ := newOTPService("111111")
	_, err := otps.Issue(ctx, address)
	require.NoError(t, err)

	for want := 4; want >= 0; want-- {
		result, err := otps.Verify(ctx, address, "999999")
		require.ErrorIs(t, err, service.ErrInvalidOTP)
		var invalid *service.InvalidCodeError
		require.True(t, errors.As(err, &invalid))
		require.Equal(t, want, invalid.AttemptsLeft)
		require.Equal(t, want, result.AttemptsLeft)
		require.False(t, result.Success)
	}

	// The sixth call fails even with the right code and burns the record.
	_, err = otps.Verify(ctx, address, "111111")
	require.ErrorIs(t, err, service.ErrTooManyAttempts)
	_, err = otps.Verify(ctx, address, "111111")
	require.ErrorIs(t, err, service.ErrOTPNotFound)
}

func TestOTPCorrectCodeAfterFailuresStillWorks(t *testing.T) {
	ctx := context.Background()
	otps, _, _ := newOTPService("111111")
	_, err := otps.Issue(ctx, address)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := otps.Verify(ctx, address, "000000")
		require.ErrorIs(t, err, service.ErrInvalidOTP)
	}
	result, err := otps.Verify(ctx, address, "111111")
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestOTPExpiredIsRemoved(t *testing.T) {
	ctx := context.Background()
	otps, store, clock := newOTPService("222222")
	_, err := otps.Issue(ctx, address)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	result, err := otps.Verify(ctx, address, "000000")
	require.ErrorIs(t, err, service.ErrInvalidOTP, "code is still live at exactly expiresAt")
	require.Equal(t, 4, result.AttemptsLeft)

	clock.Advance(time.Second)
	_, err = otps.Verify(ctx, address, "222222")
	require.ErrorIs(t, err, service.ErrOTPExpired)
	require.Equal(t, 0, store.Len())
}

func TestOTPMalformedCodeDoesNotConsumeAttempt(t *testing.T) {
	ctx := context.Background()
	otps, store, _ := newOTPService("333333")
	_, err := otps.Issue(ctx, address)
	require.NoError(t, err)

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, err := otps.Verify(ctx, address, code)
		require.ErrorIs(t, err, service.ErrInvalidInput, code)
	}
	record, err := store.Get(ctx, address)
	require.NoError(t, err)
	require.Equal(t, 0, record.Attempts)
}

func TestOTPResendCooldown(t *testing.T) {
	ctx := context.Background()
	otps, _, clock := newOTPService("444444", "555555")
	_, err := otps.Issue(ctx, address)
	require.NoError(t, err)

	status, err := otps.CanResend(ctx, address)
	require.NoError(t, err)
	require.False(t, status.CanResend)
	require.Equal(t, 60, status.WaitSeconds)

	_, err = otps.Generate(ctx, address)
	var limited *service.RateLimitedError
	require.ErrorAs(t, err, &limited)
	require.Equal(t, 60, limited.WaitSeconds)
	require.ErrorIs(t, err, service.ErrRateLimited)

	clock.Advance(59*time.Second + 500*time.Millisecond)
	status, err = otps.CanResend(ctx, address)
	require.NoError(t, err)
	require.False(t, status.CanResend)
	require.Equal(t, 1, status.WaitSeconds)

	clock.Advance(500 * time.Millisecond)
	status, err = otps.CanResend(ctx, address)
	require.NoError(t, err)
	require.True(t, status.CanResend)

	code, err := otps.Issue(ctx, address)
	require.NoError(t, err)
	require.Equal(t, "555555", code)

	// Only the latest code is accepted.
	_, err = otps.Verify(ctx, address, "444444")
	require.ErrorIs(t, err, service.ErrInvalidOTP)
	result, err := otps.Verify(ctx, address, "555555")
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestOTPCanResendDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	otps, store, _ := newOTPService("666666")
	_, err := otps.Issue(ctx, address)
	require.NoError(t, err)
	before, err := store.Get(ctx, address)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := otps.CanResend(ctx, address)
		require.NoError(t, err)
	}
	after, err := store.Get(ctx, address)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestOTPStoreUsesDefaultTTL(t *testing.T) {
	ctx := context.Background()
	otps, store, clock := newOTPService()
	require.NoError(t, otps.Store(ctx, address, "012345", 0))

	record, err := store.Get(ctx, address)
	require.NoError(t, err)
	require.Equal(t, clock.Now().Add(5*time.Minute), record.ExpiresAt)
	require.ErrorIs(t, otps.Store(ctx, address, "12345", time.Minute), service.ErrInvalidInput)
}

func TestRandomCodeGeneratorFormat(t *testing.T) {
	generator := service.NewRandomCodeGenerator()
	for i := 0; i < 200; i++ {
		code, err := generator.Generate()
		require.NoError(t, err)
		require.Regexp(t, `^[0-9]{6}$`, code)
	}
}

// slowReadStore delays reads so any read-then-write sequence in the service
// interleaves across goroutines.
type slowReadStore struct {
	*repository.MemoryOTPStore
}

func (s slowReadStore) Get(ctx context.Context, address string) (*repository.OTPRecord, error) {
	time.Sleep(5 * time.Millisecond)
	return s.MemoryOTPStore.Get(ctx, address)
}

func newSlowOTPService(codes ...string) (*service.OTPService, *repository.MemoryOTPStore) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := repository.NewMemoryOTPStoreWithClock(clock.Now)
	generator := &testutil.FixedCodes{Codes: codes}
	return service.NewOTPService(slowReadStore{store}, generator, clock, nil, service.AuthConfig{}), store
}

func TestOTPConcurrentGuessesRespectAttemptCap(t *testing.T) {
	ctx := context.Background()
	otps, _ := newSlowOTPService("424242")
	_, err := otps.Issue(ctx, address)
	require.NoError(t, err)

	var evaluated, exhausted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		code := "000000"
		if i == 49 {
			code = "424242"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := otps.Verify(ctx, address, code)
			switch {
			case err == nil, errors.Is(err, service.ErrInvalidOTP):
				evaluated.Add(1)
			case errors.Is(err, service.ErrTooManyAttempts), errors.Is(err, service.ErrOTPNotFound):
				exhausted.Add(1)
			default:
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, int(evaluated.Load()), 5)
	require.Equal(t, 50, int(evaluated.Load()+exhausted.Load()))
}

func TestOTPConcurrentVerifyIsSingleUse(t *testing.T) {
	ctx := context.Background()
	otps, store := newSlowOTPService("135790")
	_, err := otps.Issue(ctx, address)
	require.NoError(t, err)

	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := otps.Verify(ctx, address, "135790")
			if err == nil && result.Success {
				successes.Add(1)
				return
			}
			assert.ErrorIs(t, err, service.ErrOTPNotFound)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), successes.Load())
	require.Equal(t, 0, store.Len())
}

func TestOTPConcurrentIssueStoresOneCode(t *testing.T) {
	ctx := context.Background()
	otps, store := newSlowOTPService("111111", "222222", "333333", "444444", "555555")

	var issued atomic.Int32
	codes := make(chan string, 5)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := otps.Issue(ctx, address)
			if err == nil {
				issued.Add(1)
				codes <- code
				return
			}
			var limited *service.RateLimitedError
			if assert.ErrorAs(t, err, &limited) {
				assert.Equal(t, 60, limited.WaitSeconds)
			}
		}()
	}
	wg.Wait()
	close(codes)

	require.Equal(t, int32(1), issued.Load())
	record, err := store.Get(ctx, address)
	require.NoError(t, err)
	require.Equal(t, <-codes, record.Code)
}
