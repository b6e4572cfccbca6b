package preference

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentfin/ledgersync/internal/bus"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/push"
	"github.com/momentfin/ledgersync/internal/testutil"
)

type harness struct {
	svc      *Service
	api      *testutil.FakeAPI
	cache    *testutil.MemoryCache
	channel  *testutil.FakePushChannel
	notifier *testutil.FakeNotifier
	events   *bus.Bus

	changed int
	updated int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		api:      &testutil.FakeAPI{},
		cache:    &testutil.MemoryCache{},
		channel:  &testutil.FakePushChannel{},
		notifier: &testutil.FakeNotifier{},
		events:   bus.New(nil),
	}
	h.svc = NewService(h.api, h.cache, h.channel, h.events, h.notifier, "USD", 300*time.Millisecond)
	h.events.On(bus.TopicCurrencyChanged, func(any) { h.changed++ })
	h.events.On(bus.TopicPreferenceUpdated, func(any) { h.updated++ })
	return h
}

func TestSetCurrencyNoOpWhenCurrent(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.svc.SetCurrency(context.Background(), "USD"))
	assert.Zero(t, h.changed)
	assert.Empty(t, h.api.SavedPreferences)
}

func TestSetCurrencyAppliesPersistsSaves(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.svc.SetCurrency(context.Background(), "EUR"))

	assert.Equal(t, "EUR", h.svc.Current())
	assert.Equal(t, 1, h.changed)
	assert.Equal(t, []string{"EUR"}, h.api.SavedPreferences)

	cached, err := h.cache.Currency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EUR", cached)
}

func TestSetCurrencyRejectsUnknownCode(t *testing.T) {
	h := newHarness(t)

	err := h.svc.SetCurrency(context.Background(), "ZZZ")
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)
	assert.Equal(t, "USD", h.svc.Current())
}

func TestSetCurrencyRemoteFailureKeepsLocalValue(t *testing.T) {
	h := newHarness(t)
	h.api.FailSavePref = true

	err := h.svc.SetCurrency(context.Background(), "EUR")
	require.Error(t, err)

	// Local-first: the value stands, other sessions hear about it on the
	// next successful save, and the user is told once.
	assert.Equal(t, "EUR", h.svc.Current())
	_, errs := h.notifier.Counts()
	assert.Equal(t, 1, errs)
}

func TestEchoSuppression(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.SetCurrency(ctx, "EUR"))
	emitsAfterSet := h.changed

	// The server broadcast comes back to the session that initiated it.
	h.svc.HandlePush(ctx, push.Message{Preference: "currency", Value: "EUR"})

	assert.Equal(t, emitsAfterSet, h.changed, "echo must not re-trigger an update")
	successes, _ := h.notifier.Counts()
	assert.Zero(t, successes, "echo must not notify")
	assert.Equal(t, "EUR", h.svc.Current())
}

func TestPushEqualToCurrentIsSilentNoOp(t *testing.T) {
	h := newHarness(t)

	h.svc.HandlePush(context.Background(), push.Message{Preference: "currency", Value: "USD"})

	assert.Zero(t, h.changed)
	successes, errs := h.notifier.Counts()
	assert.Zero(t, successes+errs)
}

func TestPushAppliesForeignValue(t *testing.T) {
	h := newHarness(t)

	h.svc.HandlePush(context.Background(), push.Message{Preference: "currency", Value: "JPY"})

	assert.Equal(t, "JPY", h.svc.Current())
	assert.Equal(t, 1, h.changed)
	assert.Equal(t, 1, h.updated)
	successes, _ := h.notifier.Counts()
	assert.Equal(t, 1, successes, "a genuine foreign update notifies the user once")

	cached, err := h.cache.Currency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "JPY", cached)
}

func TestEchoMarkerIsConsumedOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.SetCurrency(ctx, "EUR"))
	h.svc.HandlePush(ctx, push.Message{Preference: "currency", Value: "EUR"})

	// A later push of the same value is a plain no-op (value == current),
	// not an echo; either way nothing changes and nobody is notified.
	h.svc.HandlePush(ctx, push.Message{Preference: "currency", Value: "EUR"})
	successes, _ := h.notifier.Counts()
	assert.Zero(t, successes)
	assert.Equal(t, "EUR", h.svc.Current())
}

func TestForceRefreshDebounce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	current := time.Now()
	h.svc.now = func() time.Time { return current }

	h.svc.ForceRefresh(ctx)
	h.svc.ForceRefresh(ctx)
	assert.Equal(t, 1, h.changed, "second refresh inside the window is dropped")

	current = current.Add(301 * time.Millisecond)
	h.svc.ForceRefresh(ctx)
	assert.Equal(t, 2, h.changed)
}

func TestForceRefreshNotReentrant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	current := time.Now()
	h.svc.now = func() time.Time { return current }

	var nested int
	h.events.On(bus.TopicCurrencyChanged, func(any) {
		nested++
		if nested < 3 {
			// A subscriber reacting to the refresh by forcing another one
			// must not recurse.
			h.svc.ForceRefresh(ctx)
		}
	})

	h.svc.ForceRefresh(ctx)
	assert.Equal(t, 1, nested)
}

func TestInitPrefersCacheThenReconciles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.cache.PutCurrency(ctx, "GBP"))
	h.api.RemotePreference = "EUR"

	h.svc.Init(ctx, "user-1")
	assert.Equal(t, "GBP", h.svc.Current(), "cached value applies immediately")

	require.Eventually(t, func() bool {
		return h.svc.Current() == "EUR"
	}, time.Second, 5*time.Millisecond, "remote value wins once the background read lands")
}

func TestInitRemoteAgreementIsQuiet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.cache.PutCurrency(ctx, "EUR"))
	h.api.RemotePreference = "EUR"

	h.svc.Init(ctx, "user-1")
	emitsAfterInit := h.changed

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, emitsAfterInit, h.changed, "agreement means no second apply")
	assert.Equal(t, "EUR", h.svc.Current())
}

func TestConnectRoutesPushMessages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.svc.Connect(ctx, "user-1"))
	assert.True(t, h.channel.Connected)
	assert.Equal(t, "user-1", h.channel.UserID)

	h.channel.Push(push.Message{Preference: "currency", Value: "JPY"})
	assert.Equal(t, "JPY", h.svc.Current())

	require.NoError(t, h.svc.Disconnect())
	assert.False(t, h.channel.Connected)
}
