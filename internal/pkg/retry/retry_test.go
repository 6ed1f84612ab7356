package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastewire/tastewire/internal/gateway/upstream"
)

func recordingSleep(delays *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDo_TransientExhaustsAttemptsWithDoublingDelays(t *testing.T) {
	var delays []time.Duration
	calls := 0

	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep:       recordingSleep(&delays),
	}

	_, err := Do(context.Background(), p, "test.op", func(ctx context.Context) (string, error) {
		calls++
		return "", &upstream.Error{Provider: upstream.ProviderQloo, StatusCode: 503, Kind: upstream.KindTransient}
	})

	require.Error(t, err)
	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, upstream.KindTransient, ue.Kind)

	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, delays)
}

func TestDo_SucceedsAfterTransientFailure(t *testing.T) {
	var delays []time.Duration
	calls := 0

	p := Policy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: recordingSleep(&delays)}

	out, err := Do(context.Background(), p, "test.op", func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", &upstream.Error{Provider: upstream.ProviderOpenAI, StatusCode: 500, Kind: upstream.KindTransient}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{time.Second}, delays)
}

func TestDo_CredentialErrorAbortsOnFirstAttempt(t *testing.T) {
	var delays []time.Duration
	calls := 0

	p := Policy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: recordingSleep(&delays)}

	_, err := Do(context.Background(), p, "test.op", func(ctx context.Context) (string, error) {
		calls++
		return "", &upstream.Error{Provider: upstream.ProviderOpenAI, StatusCode: 401, Kind: upstream.KindCredential}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDo_RateLimitedRetries(t *testing.T) {
	var delays []time.Duration
	calls := 0

	p := Policy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: recordingSleep(&delays)}

	_, err := Do(context.Background(), p, "test.op", func(ctx context.Context) (string, error) {
		calls++
		return "", &upstream.Error{Provider: upstream.ProviderQloo, StatusCode: 429, Kind: upstream.KindRateLimited}
	})

	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, upstream.KindRateLimited, ue.Kind)
	assert.Equal(t, 3, calls)
	assert.Len(t, delays, 3)
}

func TestDo_NonUpstreamErrorAborts(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: recordingSleep(&[]time.Duration{})}

	_, err := Do(context.Background(), p, "test.op", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("programming error")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SleepErrorPropagates(t *testing.T) {
	canceled := errors.New("sleep canceled")
	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			return canceled
		},
	}

	_, err := Do(context.Background(), p, "test.op", func(ctx context.Context) (string, error) {
		return "", &upstream.Error{Provider: upstream.ProviderQloo, StatusCode: 502, Kind: upstream.KindTransient}
	})

	assert.ErrorIs(t, err, canceled)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	p := Policy{Sleep: recordingSleep(&[]time.Duration{})}

	out, err := Do(context.Background(), p, "test.op", func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, out)
	assert.Equal(t, 1, calls)
}
