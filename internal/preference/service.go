// Package preference keeps the user's currency choice consistent across the
// local cache, the server, and the user's other sessions. Three sources of
// truth converge here; a value this session pushed out must never be
// re-applied to itself when it comes back over the push channel.
package preference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/momentfin/ledgersync/internal/bus"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/logging"
	"github.com/momentfin/ledgersync/internal/notify"
	"github.com/momentfin/ledgersync/internal/push"
)

const PreferenceCurrency = "currency"

type remoteAPI interface {
	GetUserCurrencyPreference(ctx context.Context, userID string) (string, error)
	SaveUserCurrencyPreference(ctx context.Context, code, userID string) error
}

type store interface {
	Currency(ctx context.Context) (string, error)
	PutCurrency(ctx context.Context, code string) error
}

type Service struct {
	remote   remoteAPI
	cache    store
	channel  push.Channel
	events   *bus.Bus
	notifier notify.Notifier

	debounce time.Duration
	now      func() time.Time

	mu                sync.Mutex
	userID            string
	current           string
	lastSelfUpdate    string
	lastRefresh       time.Time
	isForceRefreshing bool
}

func NewService(remote remoteAPI, cache store, channel push.Channel, events *bus.Bus, n notify.Notifier, defaultCurrency string, debounce time.Duration) *Service {
	return &Service{
		remote:   remote,
		cache:    cache,
		channel:  channel,
		events:   events,
		notifier: n,
		debounce: debounce,
		now:      time.Now,
		current:  defaultCurrency,
	}
}

// Current returns the currency code readers should render with.
func (s *Service) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Init seeds the current value from the local cache for immediate
// responsiveness, then reconciles against the server in the background. The
// remote value only wins if it still differs from the local one when the
// read completes, so a preference changed meanwhile is not clobbered.
func (s *Service) Init(ctx context.Context, userID string) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	if cached, err := s.cache.Currency(ctx); err == nil {
		s.apply(ctx, cached, false, false)
	}

	go func() {
		remote, err := s.remote.GetUserCurrencyPreference(ctx, userID)
		if err != nil {
			log.Warn("currency preference reconcile failed", "error", err)
			return
		}
		s.mu.Lock()
		differs := remote != "" && remote != s.current
		s.mu.Unlock()
		if differs {
			s.apply(ctx, remote, true, false)
		}
	}()
}

// SetCurrency is the local mutation path. The remote save triggers the
// server-side push broadcast; this session marks the value as its own so the
// inevitable echo is discarded.
func (s *Service) SetCurrency(ctx context.Context, code string) error {
	if !domain.IsKnownCurrency(code) {
		return fmt.Errorf("SetCurrency: %q: %w", code, domain.ErrUnknownCurrency)
	}

	s.mu.Lock()
	if code == s.current {
		s.mu.Unlock()
		return nil
	}
	s.lastSelfUpdate = code
	s.current = code
	userID := s.userID
	s.mu.Unlock()

	if err := s.cache.PutCurrency(ctx, code); err != nil {
		logging.FromContext(ctx).Warn("currency cache write failed", "error", err)
	}
	s.events.Emit(bus.TopicCurrencyChanged, bus.CurrencyEvent{Code: code})

	if err := s.remote.SaveUserCurrencyPreference(ctx, code, userID); err != nil {
		// The local value stands; other sessions just won't hear about it
		// until the next successful save.
		s.notifier.Error(ctx, "Your currency preference could not be saved to the server.")
		return fmt.Errorf("SetCurrency: %w", err)
	}
	return nil
}

// HandlePush consumes one inbound push message. Echoes of this session's own
// update and values already current are both discarded silently.
func (s *Service) HandlePush(ctx context.Context, msg push.Message) {
	if msg.Preference != PreferenceCurrency {
		s.events.Emit(bus.TopicPreferenceUpdated, bus.CurrencyEvent{Code: msg.Value, Remote: true})
		return
	}

	s.mu.Lock()
	if msg.Value == s.lastSelfUpdate {
		// Echo of our own save coming back around; consume the marker so a
		// later genuine push of the same value is not mistaken for one.
		s.lastSelfUpdate = ""
		s.mu.Unlock()
		return
	}
	if msg.Value == s.current {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.apply(ctx, msg.Value, true, true)
}

// ForceRefresh re-asserts the current value so dependent views re-read it.
// Debounced to the configured minimum interval and guarded against
// re-entrant calls from a subscriber reacting to the refresh itself.
func (s *Service) ForceRefresh(ctx context.Context) {
	s.mu.Lock()
	if s.isForceRefreshing {
		s.mu.Unlock()
		return
	}
	if s.now().Sub(s.lastRefresh) < s.debounce {
		s.mu.Unlock()
		return
	}
	s.isForceRefreshing = true
	s.lastRefresh = s.now()
	code := s.current
	s.mu.Unlock()

	s.events.Emit(bus.TopicCurrencyChanged, bus.CurrencyEvent{Code: code})

	s.mu.Lock()
	s.isForceRefreshing = false
	s.mu.Unlock()

	logging.FromContext(ctx).Debug("currency refresh forced", "code", code)
}

// Connect scopes the push subscription to the authenticated user.
func (s *Service) Connect(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	err := s.channel.Connect(ctx, userID, func(msg push.Message) {
		s.HandlePush(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("Connect: %w", err)
	}
	return nil
}

func (s *Service) Disconnect() error {
	if err := s.channel.Disconnect(); err != nil {
		return fmt.Errorf("Disconnect: %w", err)
	}
	return nil
}

// apply installs a new current value. remoteOrigin marks values that arrived
// from outside this session; notifyUser additionally surfaces the change.
func (s *Service) apply(ctx context.Context, code string, remoteOrigin, notifyUser bool) {
	s.mu.Lock()
	if code == s.current && remoteOrigin {
		s.mu.Unlock()
		return
	}
	s.current = code
	s.mu.Unlock()

	if err := s.cache.PutCurrency(ctx, code); err != nil {
		logging.FromContext(ctx).Warn("currency cache write failed", "error", err)
	}
	s.events.Emit(bus.TopicCurrencyChanged, bus.CurrencyEvent{Code: code, Remote: remoteOrigin})
	s.events.Emit(bus.TopicPreferenceUpdated, bus.CurrencyEvent{Code: code, Remote: remoteOrigin})

	if notifyUser {
		s.notifier.Success(ctx, "Currency changed to "+code+" from another session.")
	}
}
