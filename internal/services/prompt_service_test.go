package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestPromptTracker_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFilePromptStore(t.TempDir())

	tracker, err := NewPromptTracker(ctx, store, "demo-user-001", nil)
	require.NoError(t, err)
	assert.False(t, tracker.IsDismissed(PromptWalletBanner))

	before := time.Now()
	require.NoError(t, tracker.Dismiss(ctx, PromptWalletBanner))

	reloaded, err := NewPromptTracker(ctx, store, "demo-user-001", nil)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDismissed(PromptWalletBanner))
	assert.False(t, reloaded.IsDismissed(PromptCashback))

	at, ok := reloaded.DismissedAt(PromptWalletBanner)
	require.True(t, ok)
	assert.False(t, at.After(time.Now()))
	assert.False(t, at.Before(before.Truncate(time.Millisecond)))
}

func TestPromptTracker_DismissIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := fixedNow
	store := NewFilePromptStore(t.TempDir())
	tracker, err := NewPromptTracker(ctx, store, "owner", func() time.Time { return now })
	require.NoError(t, err)

	require.NoError(t, tracker.Dismiss(ctx, PromptCashback))
	now = now.Add(time.Minute)
	require.NoError(t, tracker.Dismiss(ctx, PromptCashback))

	state := tracker.State()
	assert.Equal(t, []string{PromptCashback}, state.DismissedPrompts)
	assert.Equal(t, now.UnixMilli(), state.LastPromptDismissTime[PromptCashback])
}

func TestPromptTracker_DismissKeepsOtherSessions(t *testing.T) {
	ctx := context.Background()
	store := NewFilePromptStore(t.TempDir())

	first, err := NewPromptTracker(ctx, store, "demo-user-001", nil)
	require.NoError(t, err)
	second, err := NewPromptTracker(ctx, store, "demo-user-001", nil)
	require.NoError(t, err)

	require.NoError(t, first.Dismiss(ctx, PromptWalletBanner))
	require.NoError(t, second.Dismiss(ctx, PromptQuickCard))
	assert.True(t, second.IsDismissed(PromptWalletBanner))

	reloaded, err := NewPromptTracker(ctx, store, "demo-user-001", nil)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDismissed(PromptWalletBanner))
	assert.True(t, reloaded.IsDismissed(PromptQuickCard))
	assert.Len(t, reloaded.State().DismissedPrompts, 2)
}

func TestFilePromptStore_RejectsPathOwners(t *testing.T) {
	store := NewFilePromptStore(t.TempDir())
	_, err := store.Load(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}

func TestRedisPromptStore(t *testing.T) {
	ctx := context.Background()
	db, rmock := redismock.NewClientMock()
	store := NewRedisPromptStore(db, 0)

	t.Run("empty load", func(t *testing.T) {
		rmock.ExpectGet("prompts:owner:dismissedPrompts").RedisNil()
		rmock.ExpectGet("prompts:owner:lastPromptDismissTime").RedisNil()

		state, err := store.Load(ctx, "owner")
		require.NoError(t, err)
		assert.Empty(t, state.DismissedPrompts)
		assert.Empty(t, state.LastPromptDismissTime)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("dismiss writes both entries", func(t *testing.T) {
		rmock.ExpectGet("prompts:owner:dismissedPrompts").RedisNil()
		rmock.ExpectGet("prompts:owner:lastPromptDismissTime").RedisNil()
		tracker, err := NewPromptTracker(ctx, store, "owner", func() time.Time { return fixedNow })
		require.NoError(t, err)

		rmock.ExpectGet("prompts:owner:dismissedPrompts").SetVal(`["quickCard"]`)
		rmock.ExpectGet("prompts:owner:lastPromptDismissTime").SetVal(`{"quickCard":1700000000000}`)
		rmock.ExpectSet("prompts:owner:dismissedPrompts", []byte(`["quickCard","walletBanner"]`), 0).SetVal("OK")
		rmock.ExpectSet("prompts:owner:lastPromptDismissTime", []byte(`{"quickCard":1700000000000,"walletBanner":1735722000000}`), 0).SetVal("OK")

		require.NoError(t, tracker.Dismiss(ctx, PromptWalletBanner))
		assert.True(t, tracker.IsDismissed(PromptWalletBanner))
		assert.True(t, tracker.IsDismissed(PromptQuickCard))
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("load existing", func(t *testing.T) {
		rmock.ExpectGet("prompts:owner:dismissedPrompts").SetVal(`["cashbackPrompt"]`)
		rmock.ExpectGet("prompts:owner:lastPromptDismissTime").SetVal(`{"cashbackPrompt":1700000000000}`)

		state, err := store.Load(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, []string{"cashbackPrompt"}, state.DismissedPrompts)
		assert.Equal(t, int64(1700000000000), state.LastPromptDismissTime["cashbackPrompt"])
		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}

func TestPromptTracker_SaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	store := &MockPromptStore{}
	store.On("Load", ctx, "owner").Return(emptyPromptState(), nil)
	store.On("Save", ctx, "owner", mock.Anything).Return(errors.New("disk full"))

	tracker, err := NewPromptTracker(ctx, store, "owner", nil)
	require.NoError(t, err)

	assert.Error(t, tracker.Dismiss(ctx, PromptQuickCard))
	assert.False(t, tracker.IsDismissed(PromptQuickCard))
	store.AssertExpectations(t)
}

func TestMatchesInvestmentIntent(t *testing.T) {
	assert.True(t, MatchesInvestmentIntent("How to INVEST"))
	assert.True(t, MatchesInvestmentIntent("extra money"))
	assert.True(t, MatchesInvestmentIntent("gold price"))
	assert.False(t, MatchesInvestmentIntent("coffee"))
	assert.False(t, MatchesInvestmentIntent(""))
}
