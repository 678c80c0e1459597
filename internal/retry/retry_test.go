// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastPolicy(maxRetries int) Policy {
	return Policy{MaxRetries: maxRetries, Base: time.Millisecond, Step: time.Millisecond}
}

func TestDo_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2), func(_ context.Context, _ int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	var seen []int
	err := Do(context.Background(), fastPolicy(3), func(_ context.Context, attempt int) error {
		seen = append(seen, attempt)
		if attempt < 2 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2), func(_ context.Context, _ int) error {
		calls++
		return errTransient
	})
	require.Error(t, err)
	// 1 initial + 2 retries = 3 total calls.
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, errTransient)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 3, rerr.Attempts)
}

func TestDo_NegativeMaxRetriesMakesOneAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(-4), func(_ context.Context, _ int) error {
		calls++
		return errTransient
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	p := Policy{MaxRetries: 5, Base: 500 * time.Millisecond, Step: 500 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Do(ctx, p, func(_ context.Context, _ int) error {
		return errTransient
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{Base: 600 * time.Millisecond, Step: 500 * time.Millisecond}

	assert.Equal(t, 600*time.Millisecond, p.Delay(0))
	assert.Equal(t, 1100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 1600*time.Millisecond, p.Delay(2))
	assert.Equal(t, 600*time.Millisecond, p.Delay(-1))
}

func TestNewPolicy_UsesPackageDefaults(t *testing.T) {
	p := NewPolicy(2)
	assert.Equal(t, 2, p.MaxRetries)
	assert.Equal(t, RetryBaseDelay, p.Base)
	assert.Equal(t, RetryStep, p.Step)
	assert.Equal(t, 3, p.Attempts())
}
