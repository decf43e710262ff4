package repository

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// MemoryOTPStore keeps records in process. It is meant for single-instance
// development setups and tests.
type MemoryOTPStore struct {
	mu      sync.Mutex
	records map[string]OTPRecord
	grace   time.Duration
	now     func() time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return NewMemoryOTPStoreWithClock(time.Now)
}

// NewMemoryOTPStoreWithClock sweeps stale records against now instead of the wall clock.
func NewMemoryOTPStoreWithClock(now func() time.Time) *MemoryOTPStore {
	return &MemoryOTPStore{
		records: make(map[string]OTPRecord),
		grace:   otpEvictionGrace,
		now:     now,
	}
}

func (s *MemoryOTPStore) Get(_ context.Context, address string) (*OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[address]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryOTPStore) Put(_ context.Context, record OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Address] = record
	s.sweepLocked()
	return nil
}

func (s *MemoryOTPStore) PutIfIdle(_ context.Context, record OTPRecord, cooldown time.Duration) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.records[record.Address]; ok && !record.CreatedAt.After(current.ExpiresAt) {
		if elapsed := record.CreatedAt.Sub(current.CreatedAt); elapsed < cooldown {
			return false, cooldown - elapsed, nil
		}
	}
	record.Attempts = 0
	s.records[record.Address] = record
	s.sweepLocked()
	return true, 0, nil
}

func (s *MemoryOTPStore) Consume(_ context.Context, address string, code string, now time.Time, maxAttempts int) (ConsumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[address]
	if !ok {
		return ConsumeResult{Outcome: ConsumeMissing}, nil
	}
	switch {
	case now.After(record.ExpiresAt):
		delete(s.records, address)
		return ConsumeResult{Outcome: ConsumeExpired, Attempts: record.Attempts}, nil
	case record.Attempts >= maxAttempts:
		delete(s.records, address)
		return ConsumeResult{Outcome: ConsumeExhausted, Attempts: record.Attempts}, nil
	case subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) == 1:
		delete(s.records, address)
		return ConsumeResult{Outcome: ConsumeMatched, Attempts: record.Attempts}, nil
	}
	record.Attempts++
	s.records[address] = record
	return ConsumeResult{Outcome: ConsumeMismatch, Attempts: record.Attempts}, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, address)
	return nil
}

func (s *MemoryOTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryOTPStore) sweepLocked() {
	cutoff := s.now().Add(-s.grace)
	for address, record := range s.records {
		if record.ExpiresAt.Before(cutoff) {
			delete(s.records, address)
		}
	}
}
