// Package api implements the SmileCoin middleware process: contract gateway,
// event indexer and the HTTP surface over both.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/yt20chill/SmileCoin-sub001/pkg/app/http"
	"github.com/yt20chill/SmileCoin-sub001/pkg/config"
	"github.com/yt20chill/SmileCoin-sub001/pkg/gateway"
	"github.com/yt20chill/SmileCoin-sub001/pkg/indexer"
	"github.com/yt20chill/SmileCoin-sub001/pkg/migrations/txdb"
	"github.com/yt20chill/SmileCoin-sub001/pkg/pgutil"
	"github.com/yt20chill/SmileCoin-sub001/pkg/smilecoin"
	"github.com/yt20chill/SmileCoin-sub001/pkg/txstore"
	"github.com/yt20chill/SmileCoin-sub001/pkg/wallet"
)

const defaultRequestTimeout = 60 * time.Second

// Server holds cfg to init the middleware process.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new middleware server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting SmileCoin middleware",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	if err := txdb.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := txstore.NewStore(db)

	gw := gateway.New(
		wallet.NewDirResolver(cfg.Wallet.KeyDir),
		gateway.WithLogger(logger),
	)
	if err := gw.Initialize(ctx, &cfg.Chain); err != nil {
		return fmt.Errorf("initialize gateway: %w", err)
	}

	ix, closeChain, err := s.buildIndexer(ctx, store, logger)
	if err != nil {
		return err
	}
	defer closeChain()

	if err := ix.Start(ctx); err != nil {
		return fmt.Errorf("start indexer: %w", err)
	}
	defer ix.Stop()

	s.runCatchUp(ctx, ix, logger)

	stopMetrics := s.startMetricsServer(logger)
	defer stopMetrics()

	router := NewRouter(gw, ix, logger)
	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

// buildIndexer dials a second chain connection for the indexer, preferring
// the websocket endpoint since log subscriptions need push delivery.
func (s *Server) buildIndexer(ctx context.Context, store txstore.Store, logger *zap.Logger) (*indexer.Indexer, func(), error) {
	url := s.cfg.Chain.WSUrl
	if url == "" {
		url = s.cfg.Chain.RPCURL
	}
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial chain node for indexer: %w", err)
	}
	contract, err := smilecoin.NewContract(common.HexToAddress(s.cfg.Chain.ContractAddress), client)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("bind contract for indexer: %w", err)
	}
	logger.Info("Indexer connected to chain", zap.String("url", url))

	ix := indexer.New(store, client, contract, s.cfg.Indexer, indexer.WithLogger(logger))
	return ix, client.Close, nil
}

// runCatchUp backfills from the configured start block to the current head so
// the mirror covers events emitted while the service was down.
func (s *Server) runCatchUp(ctx context.Context, ix *indexer.Indexer, logger *zap.Logger) {
	if s.cfg.Indexer.StartBlock <= 0 {
		return
	}
	go func() {
		result, err := ix.Backfill(ctx, indexer.Block(uint64(s.cfg.Indexer.StartBlock)), indexer.Head())
		if err != nil {
			logger.Warn("startup backfill incomplete", zap.Error(err))
			return
		}
		logger.Info("startup backfill finished",
			zap.Uint64("from_block", result.FromBlock),
			zap.Uint64("to_block", result.ToBlock),
			zap.Int("indexed", result.Indexed),
		)
	}()
}

func (s *Server) startMetricsServer(logger *zap.Logger) func() {
	if !s.cfg.Monitoring.Enabled {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Monitoring.MetricsPort),
		Handler: mux,
	}
	go func() {
		logger.Info("Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// NewRouter builds the HTTP surface over the gateway and the indexer.
func NewRouter(gw ContractGateway, ix EventIndexer, logger *zap.Logger) chi.Router {
	h := &handler{gateway: gw, indexer: ix, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tourists", apphttp.HandleError(h.registerTourist))
		r.Post("/tourists/{address}/daily-coins", apphttp.HandleError(h.issueDailyCoins))
		r.Post("/tourists/{address}/burn-expired", apphttp.HandleError(h.burnExpiredCoins))
		r.Get("/tourists/{address}/history", apphttp.HandleError(h.touristHistory))

		r.Post("/restaurants", apphttp.HandleError(h.registerRestaurant))
		r.Get("/restaurants/{address}/earnings", apphttp.HandleError(h.restaurantEarnings))

		r.Post("/transfers", apphttp.HandleError(h.transfer))

		r.Get("/balances/{address}", apphttp.HandleError(h.balanceInfo))
		r.Get("/network/status", apphttp.HandleError(h.networkStatus))
		r.Get("/network/constants", apphttp.HandleError(h.contractConstants))

		r.Get("/transactions", apphttp.HandleError(h.listTransactions))
		r.Get("/transactions/{hash}", apphttp.HandleError(h.getTransaction))
		r.Post("/transactions/{hash}/poll", apphttp.HandleError(h.pollTransaction))

		r.Get("/stats/daily", apphttp.HandleError(h.dailyStats))
		r.Post("/indexer/backfill", apphttp.HandleError(h.backfill))
	})

	return r
}
