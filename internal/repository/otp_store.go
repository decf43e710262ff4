package repository

import (
	"context"
	"time"
)

// OTPRecord is the single live one-time passcode for an address.
type OTPRecord struct {
	Address   string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Attempts  int
}

type ConsumeOutcome int

const (
	ConsumeMissing ConsumeOutcome = iota
	ConsumeMatched
	ConsumeExpired
	ConsumeExhausted
	ConsumeMismatch
)

// ConsumeResult carries the attempt count seen (or, on mismatch, written) by Consume.
type ConsumeResult struct {
	Outcome  ConsumeOutcome
	Attempts int
}

// OTPStore keeps at most one record per address. Stores guarantee eventual
// eviction; PutIfIdle and Consume judge expiry against the time they are given.
type OTPStore interface {
	Get(ctx context.Context, address string) (*OTPRecord, error)
	Put(ctx context.Context, record OTPRecord) error
	// PutIfIdle writes the record unless a live record for the address was
	// created less than cooldown before record.CreatedAt. When refused it
	// returns the remaining cooldown.
	PutIfIdle(ctx context.Context, record OTPRecord, cooldown time.Duration) (stored bool, wait time.Duration, err error)
	// Consume checks code against the record in one atomic step. Expired,
	// exhausted and matched records are deleted; a mismatch bumps attempts.
	Consume(ctx context.Context, address string, code string, now time.Time, maxAttempts int) (ConsumeResult, error)
	Delete(ctx context.Context, address string) error
}
