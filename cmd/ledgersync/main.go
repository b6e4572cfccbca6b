// Command ledgersync runs the sync engine against a backend and walks one
// ledger through its lifecycle, logging the mirrored state as it changes.
// Point it at cmd/mock-backend for a self-contained run.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/momentfin/ledgersync/internal/api"
	"github.com/momentfin/ledgersync/internal/bus"
	"github.com/momentfin/ledgersync/internal/cache"
	"github.com/momentfin/ledgersync/internal/config"
	"github.com/momentfin/ledgersync/internal/domain"
	"github.com/momentfin/ledgersync/internal/ledger"
	"github.com/momentfin/ledgersync/internal/logging"
	"github.com/momentfin/ledgersync/internal/notify"
	"github.com/momentfin/ledgersync/internal/preference"
	"github.com/momentfin/ledgersync/internal/push"
	"github.com/momentfin/ledgersync/internal/service/asset"
	"github.com/momentfin/ledgersync/internal/service/transaction"
)

const demoUserID = "demo-user"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("ledgersync", cfg.LogLevel, cfg.AppEnv)
	ctx := logging.WithLogger(context.Background(), logger)

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		slog.Error("failed to open local cache", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := api.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout())
	events := bus.New(logger)
	notifier := notify.LogNotifier{}
	book := ledger.New()

	assets := asset.NewService(book, client, client, notifier)
	transactions := transaction.NewService(book, client, assets, events, notifier)
	prefs := preference.NewService(client, store, push.NewWebsocketChannel(cfg.PushURL), events, notifier, cfg.DefaultCurrency, cfg.RefreshDebounce())

	events.On(bus.TopicCurrencyChanged, func(event any) {
		logSummary(ctx, book, prefs.Current())
	})

	prefCtx := logging.WithComponent(ctx, "preference")
	prefs.Init(prefCtx, demoUserID)
	if err := prefs.Connect(prefCtx, demoUserID); err != nil {
		slog.Warn("push channel unavailable, continuing without it", "error", err)
	} else {
		defer prefs.Disconnect()
	}

	if err := assets.Load(ctx); err != nil {
		slog.Error("failed to load assets", "error", err)
		os.Exit(1)
	}
	if err := transactions.Load(ctx, api.TransactionFilters{}); err != nil {
		slog.Error("failed to load transactions", "error", err)
		os.Exit(1)
	}
	logSummary(ctx, book, prefs.Current())

	if err := runDemo(logging.WithComponent(ctx, "transaction"), book, transactions); err != nil {
		slog.Error("demo flow failed", "error", err)
		os.Exit(1)
	}
	logSummary(ctx, book, prefs.Current())

	slog.Info("engine running, waiting for pushes", "user", demoUserID)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("engine stopped")
}

// runDemo walks one transaction through create, soft delete, restore and
// permanent delete so the compensation math is visible in the logs.
func runDemo(ctx context.Context, book *ledger.Ledger, transactions *transaction.Service) error {
	assets := book.Assets()
	if len(assets) == 0 {
		slog.Info("no assets on the server, skipping demo flow")
		return nil
	}

	tx, err := transactions.Create(ctx, transaction.CreateRequest{
		Title:      "Weekly groceries",
		Amount:     decimal.RequireFromString("30"),
		Type:       domain.TransactionTypeExpense,
		AssetID:    assets[0].ID,
		CategoryID: uuid.New(),
		Date:       time.Now(),
	})
	if err != nil {
		return err
	}
	if err := transactions.SoftDelete(ctx, tx.LocalID); err != nil {
		return err
	}
	if err := transactions.Restore(ctx, tx.LocalID); err != nil {
		return err
	}
	return transactions.PermanentDelete(ctx, tx.LocalID)
}

func logSummary(ctx context.Context, book *ledger.Ledger, currency string) {
	s := book.Summary()
	logging.FromContext(ctx).Info("ledger summary",
		"income", domain.FormatAmount(s.Income, currency),
		"expenses", domain.FormatAmount(s.Expenses, currency),
		"savings", domain.FormatAmount(s.Savings, currency),
		"balance", domain.FormatAmount(s.Balance, currency),
	)
}
