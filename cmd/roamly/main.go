package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"roamly/internal/app/commands"
	availabilityapp "roamly/internal/app/handlers/availability"
	bookingapp "roamly/internal/app/handlers/booking"
	pricingapp "roamly/internal/app/handlers/pricing"
	"roamly/internal/app/middleware"
	appoutbox "roamly/internal/app/outbox"
	"roamly/internal/app/queries"
	"roamly/internal/app/uow"
	domainavailability "roamly/internal/domain/availability"
	domaininventory "roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/money"
	"roamly/internal/infra/broker/kafka"
	"roamly/internal/infra/config"
	mongodb "roamly/internal/infra/db/mongo"
	ginserver "roamly/internal/infra/http/gin"
	"roamly/internal/infra/obs"
	infraoutbox "roamly/internal/infra/outbox"
	"roamly/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := cfg.FixturesPath
	if fixturesPath == "" {
		fixturesPath = defaultUnitFixturesPath()
	}
	if err := app.loadUnitFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("unit fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	units    domaininventory.Repository
	blocks   blockWriter
	worker   *infraoutbox.Worker
	ready    func() error
	close    func()
}

type blockWriter interface {
	Add(ctx context.Context, block domainavailability.Block) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory  uow.UoWFactory
		unitsRepo   domaininventory.Repository
		blocksRepo  blockWriter
		outboxStore appoutbox.Outbox
		idStore     middleware.IdempotencyStore
		worker      *infraoutbox.Worker
		ready       = func() error { return nil }
		closeFn     = func() {}
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		units := mongodb.NewUnitRepository(client.DB)
		bookings := mongodb.NewBookingRepository(client.DB)
		blocks := mongodb.NewBlockRepository(client.DB)
		store := infraoutbox.NewStore(client.DB)
		uowFactory = mongodb.Factory{
			DB:           client.DB,
			UnitsRepo:    units,
			BookingRepo:  bookings,
			Reservations: bookings,
			BlocksRepo:   blocks,
			LockWait:     cfg.CommitLockWait,
		}
		unitsRepo = units
		blocksRepo = blocks
		outboxStore = store
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, err
			}
			closeFn = func() { _ = producer.Close() }
			worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("kafka brokers not configured, outbox events stay queued")
		}
	} else {
		logger.Info("MONGO_URI not set, using in-memory storage")
		units := memory.NewUnitRepository()
		bookings := memory.NewBookingRepository()
		blocks := memory.NewBlockRepository()
		uowFactory = &memory.Factory{
			UnitsRepo:    units,
			BookingRepo:  bookings,
			Reservations: bookings,
			BlocksRepo:   blocks,
			LockWait:     cfg.CommitLockWait,
		}
		unitsRepo = units
		blocksRepo = blocks
		outboxStore = memory.NewOutbox()
		memStore := memory.NewIdempotencyStore()
		memStore.TTL = cfg.IdempotencyTTL
		idStore = memStore
	}

	commandBus := commands.NewInMemoryBus()
	commitHandler := &bookingapp.CommitBookingHandler{
		UoWFactory:   uowFactory,
		Outbox:       outboxStore,
		Encoder:      appoutbox.JSONEventEncoder{},
		StoreTimeout: cfg.StoreTimeout,
	}
	commands.RegisterHandler(commandBus, bookingapp.CommitBookingCommand{}.Key(), commitHandler)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.CheckAvailabilityQuery{}.Key(), &availabilityapp.CheckAvailabilityHandler{
		UoWFactory:   uowFactory,
		StoreTimeout: cfg.StoreTimeout,
	})
	queries.RegisterHandler(queryBus, availabilityapp.SuggestAlternativesQuery{}.Key(), &availabilityapp.SuggestAlternativesHandler{
		UoWFactory:            uowFactory,
		StoreTimeout:          cfg.StoreTimeout,
		DefaultWindowDays:     cfg.SuggestWindowDays,
		DefaultMaxSuggestions: cfg.SuggestMaxResults,
	})
	queries.RegisterHandler(queryBus, pricingapp.QuoteQuery{}.Key(), &pricingapp.QuoteHandler{
		UoWFactory:   uowFactory,
		StoreTimeout: cfg.StoreTimeout,
	})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{
		UoWFactory:   uowFactory,
		StoreTimeout: cfg.StoreTimeout,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	return application{
		handlers: ginserver.Handlers{
			Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
			Pricing:      ginserver.PricingHandler{Queries: queryBusWithMiddleware},
			Booking: ginserver.BookingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
		},
		units:  unitsRepo,
		blocks: blocksRepo,
		worker: worker,
		ready:  ready,
		close:  closeFn,
	}, nil
}

func (a application) loadUnitFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("unit fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []unitFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		params := domaininventory.CreateUnitParams{
			ID:              domaininventory.UnitID(fx.ID),
			Owner:           domaininventory.OwnerID(fx.Owner),
			Title:           fx.Title,
			Vertical:        domaininventory.Vertical(fx.Vertical),
			Capacity:        fx.Capacity,
			Currency:        fx.Currency,
			BaseRate:        fx.BaseRateCents,
			WeekendRate:     fx.WeekendRateCents,
			DiscountPercent: fx.DiscountPercent,
			TaxPercent:      fx.TaxPercent,
			PromoLabel:      fx.PromoLabel,
			Now:             now,
		}
		for _, day := range fx.WeekendDays {
			params.WeekendDays = append(params.WeekendDays, time.Weekday(day))
		}
		for _, fee := range fx.Fees {
			params.Fees = append(params.Fees, domaininventory.Fee{
				Name:     fee.Name,
				Basis:    domaininventory.FeeBasis(fee.Basis),
				Amount:   moneyFor(fee.AmountCents, fx.Currency),
				Taxable:  fee.Taxable,
				Optional: fee.Optional,
			})
		}

		unit, err := domaininventory.NewUnit(params)
		if err != nil {
			logger.Error("fixture invalid", "unit_id", fx.ID, "error", err)
			continue
		}
		if err := unit.Activate(now); err != nil {
			logger.Error("fixture activation failed", "unit_id", fx.ID, "error", err)
			continue
		}
		unit.ClearEvents()
		if err := a.units.Save(ctx, unit); err != nil {
			logger.Error("cannot store fixture unit", "unit_id", fx.ID, "error", err)
			continue
		}
		for _, blk := range fx.Blocks {
			dr, err := parseFixtureRange(blk.From, blk.To)
			if err != nil {
				logger.Error("fixture block has invalid dates", "unit_id", fx.ID, "error", err)
				continue
			}
			if err := a.blocks.Add(ctx, domainavailability.Block{
				UnitID:    unit.ID,
				Range:     dr,
				Reason:    domainavailability.BlockReason(blk.Reason),
				Reference: blk.Reference,
				CreatedAt: now,
			}); err != nil {
				logger.Error("cannot store fixture block", "unit_id", fx.ID, "error", err)
			}
		}
		logger.Info("unit fixture imported", "unit_id", unit.ID)
	}
	return nil
}

type unitFixture struct {
	ID               string         `json:"id"`
	Owner            string         `json:"owner"`
	Title            string         `json:"title"`
	Vertical         string         `json:"vertical"`
	Capacity         int            `json:"capacity"`
	Currency         string         `json:"currency"`
	BaseRateCents    int64          `json:"base_rate_cents"`
	WeekendRateCents int64          `json:"weekend_rate_cents"`
	WeekendDays      []int          `json:"weekend_days"`
	DiscountPercent  float64        `json:"discount_percent"`
	TaxPercent       float64        `json:"tax_percent"`
	PromoLabel       string         `json:"promo_label"`
	Fees             []feeFixture   `json:"fees"`
	Blocks           []blockFixture `json:"blocks"`
}

type feeFixture struct {
	Name        string `json:"name"`
	Basis       string `json:"basis"`
	AmountCents int64  `json:"amount_cents"`
	Taxable     bool   `json:"taxable"`
	Optional    bool   `json:"optional"`
}

type blockFixture struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
}

func moneyFor(amount int64, currency string) money.Money {
	return money.Money{Amount: amount, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

func parseFixtureRange(from, to string) (daterange.DateRange, error) {
	checkIn, err := time.Parse("2006-01-02", from)
	if err != nil {
		return daterange.DateRange{}, err
	}
	checkOut, err := time.Parse("2006-01-02", to)
	if err != nil {
		return daterange.DateRange{}, err
	}
	return daterange.New(checkIn, checkOut)
}

func defaultUnitFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "units.json"),
		filepath.Join("deploy", "data", "units.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
