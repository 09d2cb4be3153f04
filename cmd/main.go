package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"grubmarket/internal/auth"
	"grubmarket/internal/cache"
	"grubmarket/internal/config"
	"grubmarket/internal/database"
	"grubmarket/internal/httpx"
	"grubmarket/internal/logger"
	"grubmarket/internal/messaging"
	"grubmarket/internal/models"
	"grubmarket/internal/services/catalog"
	"grubmarket/internal/services/order"
	"grubmarket/internal/services/promotion"
	"grubmarket/internal/services/user"
)

func main() {
	var (
		mode           = flag.String("mode", "", "service mode: api or notifier")
		migrationsPath = flag.String("migrations", "migrations", "path to migration files")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintln(os.Stderr, "Usage: grubmarket -mode <api|notifier>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("grubmarket-" + *mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, log, *migrationsPath)
	case "notifier":
		err = runNotifier(ctx, cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", *mode)
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("service_failed", "Service exited with error", "", err, nil)
		os.Exit(1)
	}
	log.Info("service_stopped", "Service shut down cleanly", "", nil)
}

// runAPI starts the HTTP API together with the promotion expiry sweeper.
func runAPI(ctx context.Context, cfg *config.Config, log *logger.Logger, migrationsPath string) error {
	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	rabbit, err := messaging.New(cfg, log)
	if err != nil {
		return err
	}
	defer rabbit.Close()
	publisher := messaging.NewPublisher(rabbit, log)

	// The cache is best effort: if Redis is down at startup the API runs
	// without it and every read goes to the database.
	var orderCache *cache.OrderCache
	rdb := cache.NewClient(cfg.Redis.Addr)
	if candidate := cache.NewOrderCache(rdb); candidate.Ping(ctx) == nil {
		orderCache = candidate
	} else {
		log.Error("redis_unavailable", "Redis not reachable, running without order cache", "startup", nil, map[string]interface{}{
			"addr": cfg.Redis.Addr,
		})
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	userService := user.NewService(user.NewRepository(db), tokens, log)
	catalogService := catalog.NewService(catalog.NewRepository(db), log)
	orderService := order.NewService(order.NewRepository(db), publisher, orderCache, log)
	promotionRepo := promotion.NewRepository(db)
	promotionService := promotion.NewService(promotionRepo, log)

	userHandler := user.NewHandler(userService, log)
	catalogHandler := catalog.NewHandler(catalogService, log)
	orderHandler := order.NewHandler(orderService, log)
	promotionHandler := promotion.NewHandler(promotionService, log)

	authMiddleware := auth.NewMiddleware(tokens, userService, log)

	r := httpx.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Ping(req.Context()); err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	userHandler.RegisterPublic(r)
	catalogHandler.RegisterPublic(r)

	r.Group(func(pr chi.Router) {
		pr.Use(authMiddleware.Authenticate)
		userHandler.RegisterProtected(pr)
		orderHandler.Register(pr)

		pr.Group(func(or chi.Router) {
			or.Use(authMiddleware.RequireRoles(models.RoleOwner))
			catalogHandler.RegisterOwner(or)
			promotionHandler.Register(or)
		})
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweeper := promotion.NewSweeper(promotionRepo, cfg.Promotion.SweepInterval, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server_started", "HTTP API listening", "", map[string]interface{}{
			"addr": cfg.HTTP.Addr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runNotifier consumes the notification fanout and logs every lifecycle
// event. It stands in for push delivery to connected clients.
func runNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	rabbit, err := messaging.New(cfg, log)
	if err != nil {
		return err
	}
	defer rabbit.Close()

	consumer := messaging.NewConsumer(rabbit, log, messaging.NotificationsQueue, "grubmarket-notifier", 10)

	return consumer.StartConsuming(ctx, func(ctx context.Context, body []byte) error {
		var event models.OrderEvent
		if err := messaging.ParseMessage(body, &event); err != nil {
			return fmt.Errorf("failed to parse event: %w", err)
		}

		fields := map[string]interface{}{
			"event":       event.Event,
			"order_id":    event.Order.ID,
			"customer_id": event.Order.CustomerID,
			"status":      event.Order.Status,
		}
		if event.OwnerID != 0 {
			fields["owner_id"] = event.OwnerID
		}
		if event.Order.DriverID != nil {
			fields["driver_id"] = *event.Order.DriverID
		}
		log.Info("order_notification", fmt.Sprintf("Order %s", event.Event), "", fields)
		return nil
	})
}
