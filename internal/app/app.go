// Package app wires every pipeline component (collector, scanner,
// queue, optimizer, circuit breaker, transaction builder, and
// orchestrator) into a single running process and exposes its status
// over HTTP. Grounded on the teacher's internal/app.Application
// (gorilla/mux + rs/cors status server, fx.Lifecycle-driven
// Start/Stop), replacing its simulateActivity ticker with the real
// tick loop pkg/orchestrator.Orchestrator.Run drives.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mev-engine/atomic-arb-engine/internal/chainclient"
	"github.com/mev-engine/atomic-arb-engine/internal/config"
	"github.com/mev-engine/atomic-arb-engine/pkg/breaker"
	"github.com/mev-engine/atomic-arb-engine/pkg/builder"
	"github.com/mev-engine/atomic-arb-engine/pkg/collector"
	"github.com/mev-engine/atomic-arb-engine/pkg/collector/parsers"
	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/metrics"
	"github.com/mev-engine/atomic-arb-engine/pkg/optimizer"
	"github.com/mev-engine/atomic-arb-engine/pkg/orchestrator"
	"github.com/mev-engine/atomic-arb-engine/pkg/processing"
	"github.com/mev-engine/atomic-arb-engine/pkg/queue"
	"github.com/mev-engine/atomic-arb-engine/pkg/scanner"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// Application owns every long-running pipeline component and a small
// status HTTP server.
type Application struct {
	config    *config.Config
	logger    *zap.Logger
	startTime time.Time

	chain      *chainclient.Client
	supervisor *collector.Supervisor
	pool       interfaces.WorkerPool
	gasMonitor *breaker.GasMonitor
	breaker    *breaker.CircuitBreaker
	queueMgr   *queue.Manager
	orch       *orchestrator.Orchestrator
	metrics    *metrics.Collector

	mu     sync.RWMutex
	status string
	server *http.Server
}

// NewApplication assembles the full pipeline from configuration,
// without starting any goroutines. It dials the chain RPC endpoint,
// which opens a connection when the URL is ws(s)://.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("app: build logger: %w", err)
	}

	decimals := make(types.DecimalsMap, len(cfg.Venues.AssetDecimals))
	for asset, d := range cfg.Venues.AssetDecimals {
		decimals[types.AssetType(asset)] = d
	}

	keysByVenue := make(map[types.Venue][]types.PoolKey)
	for _, mp := range cfg.Venues.MonitoredPools {
		v := types.Venue(mp.Venue)
		keysByVenue[v] = append(keysByVenue[v], types.PoolKey{
			Venue: v, Pool: types.PoolID(mp.Pool), Base: types.AssetType(mp.Base), Quote: types.AssetType(mp.Quote),
		})
	}

	chain, err := chainclient.Dial(context.Background(), cfg.Chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("app: dial chain: %w", err)
	}

	signer, err := chainclient.NewSigner(cfg.Chain.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("app: build signer: %w", err)
	}

	cache := collector.NewCache()
	pool := processing.NewWorkerPool(processing.DefaultWorkerPoolConfig())

	pollInterval := time.Duration(cfg.Loop.PollIntervalMS) * time.Millisecond
	tasks := make([]interfaces.CollectorTask, 0, len(keysByVenue)*2)
	for venue, keys := range keysByVenue {
		parser := parserFor(venue)
		tasks = append(tasks, collector.NewPollingTask(venue, keys, chain, parser, cache, pool, pollInterval, logger))
		if cfg.Chain.UseWebSocket {
			tasks = append(tasks, collector.NewEventStreamTask(venue, cfg.Chain.WSURL, keyOfFunc(keys), chain, parser, cache, logger))
		}
	}
	supervisor := collector.NewSupervisor(logger, tasks...)

	scan := scanner.New(scanner.DefaultProbeUnits)
	opt := optimizer.New()

	cb := breaker.New(breaker.Config{
		MaxConsecutiveFailures: cfg.Breaker.MaxConsecutiveFailures,
		MaxCumulativeLoss:      big64(cfg.Breaker.MaxCumulativeLoss),
		Cooldown:               time.Duration(cfg.Breaker.CooldownMS) * time.Millisecond,
	})
	gasMonitor := breaker.NewGasMonitor(big64(cfg.Breaker.MinGasBalance))

	bld := builder.New(types.AssetType(cfg.Venues.DeepFeeCoinID))
	validator := builder.NewValidator(chain, bld)
	submitter := builder.NewSubmitter(signer, chain)

	queueImpl := queue.NewOpportunityQueueImpl(queue.DefaultMaxCapacity)
	queueMgr := queue.NewManager(queueImpl)

	orchCfg := orchestrator.DefaultConfig()
	orchCfg.DryRunBeforeSubmit = cfg.Loop.DryRunBeforeSubmit
	orchCfg.EstimatedGas = big64(int64(cfg.Loop.MaxGasBudget))
	orchCfg.MinProfit = big64(cfg.Loop.MinProfit)
	if cfg.Loop.PollIntervalMS > 0 {
		orchCfg.TickInterval = pollInterval
	}

	orch := orchestrator.New(orchCfg, cache, decimals, scan, queueImpl, opt, bld, validator, submitter, cb, gasMonitor, logger)

	metricsCollector := metrics.NewCollector(metrics.DefaultConfig())

	return &Application{
		config:     cfg,
		logger:     logger,
		startTime:  time.Now(),
		chain:      chain,
		supervisor: supervisor,
		pool:       pool,
		gasMonitor: gasMonitor,
		breaker:    cb,
		queueMgr:   queueMgr,
		orch:       orch,
		metrics:    metricsCollector,
		status:     "starting",
	}, nil
}

func parserFor(v types.Venue) interfaces.PoolParser {
	switch v {
	case types.VenueCLOB:
		return parsers.CLOBParser{}
	case types.VenueWeighted:
		return parsers.WeightedParser{}
	default:
		return parsers.CLMMParser{}
	}
}

// keyOfFunc builds an event-stream key extractor that matches an
// event envelope's "pool_id" field against the venue's monitored pools.
func keyOfFunc(keys []types.PoolKey) func([]byte) (types.PoolKey, bool) {
	byPool := make(map[types.PoolID]types.PoolKey, len(keys))
	for _, k := range keys {
		byPool[k.Pool] = k
	}
	return func(raw []byte) (types.PoolKey, bool) {
		var envelope struct {
			PoolID string `json:"pool_id"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return types.PoolKey{}, false
		}
		key, ok := byPool[types.PoolID(envelope.PoolID)]
		return key, ok
	}
}

func big64(v int64) *big.Int { return big.NewInt(v) }

// Start launches the collector supervisor, the worker pool, the
// orchestrator's tick loop, and the status HTTP server, blocking until
// ctx is cancelled.
func (a *Application) Start(ctx context.Context) error {
	a.mu.Lock()
	a.status = "running"
	a.mu.Unlock()

	if err := a.pool.Start(ctx); err != nil {
		return fmt.Errorf("app: start worker pool: %w", err)
	}

	go a.supervisor.Run(ctx)
	go a.gasMonitorLoop(ctx)
	go a.queueMaintenanceLoop(ctx)

	a.server = a.buildServer()
	go func() {
		a.logger.Info("status server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("status server error", zap.Error(err))
		}
	}()

	a.logger.Info("atomic arbitrage engine started")
	return a.orch.Run(ctx)
}

// Stop gracefully shuts the status server down.
func (a *Application) Stop(ctx context.Context) error {
	a.mu.Lock()
	a.status = "stopping"
	a.mu.Unlock()

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("status server shutdown error", zap.Error(err))
		}
	}
	if a.chain != nil {
		a.chain.Close()
	}
	_ = a.pool.Stop(ctx)

	a.logger.Info("atomic arbitrage engine stopped")
	return nil
}

// gasMonitorLoop refreshes the wallet balance gate every 10 seconds,
// per the spec's gas monitor polling cadence.
func (a *Application) gasMonitorLoop(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			balance, err := a.chain.Balance(ctx, a.config.Chain.OperatorAddress)
			if err != nil {
				a.logger.Warn("gas balance refresh failed", zap.Error(err))
				continue
			}
			a.gasMonitor.Refresh(now, balance)
			a.metrics.SetBreakerOpen(a.breaker.State() == interfaces.BreakerOpen)
		}
	}
}

// queueMaintenanceLoop evicts expired and over-capacity opportunities
// on the same cadence the teacher's QueueManagerImpl runs its sweep.
func (a *Application) queueMaintenanceLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.queueMgr.EvictOldTransactions(now)
			a.queueMgr.ManageCapacity()
			a.metrics.SetQueueSize(a.queueMgr.GetQueueStats().CurrentSize)
		}
	}
}

// statusWindow bounds how many recent submissions the status endpoint's
// success rate is computed over.
const statusWindow = 100

type statusResponse struct {
	Status             string    `json:"status"`
	Uptime             string    `json:"uptime"`
	BreakerState       string    `json:"breaker_state"`
	QueueSize          int       `json:"queue_size"`
	SuccessRatePercent string    `json:"success_rate_percent"`
	Timestamp          time.Time `json:"timestamp"`
}

func (a *Application) buildServer() *http.Server {
	router := mux.NewRouter()
	router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/status", a.handleStatus).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.PrometheusHandler()).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:      c.Handler(router),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}
}

func (a *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (a *Application) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	status := a.status
	a.mu.RUnlock()

	resp := statusResponse{
		Status:             status,
		Uptime:             time.Since(a.startTime).Round(time.Second).String(),
		BreakerState:       a.breaker.State().String(),
		QueueSize:          a.queueMgr.GetQueueStats().CurrentSize,
		SuccessRatePercent: a.metrics.PerformanceWindow(statusWindow).SuccessRatePercent,
		Timestamp:          time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode status", http.StatusInternalServerError)
	}
}

// Module provides the fx module for dependency injection.
var Module = fx.Options(
	fx.Provide(NewApplication),
)
