package poolregistry

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/defistate/defistate-amm-go/engine"
	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the dependencies of a PoolSystem.
type Config struct {
	Registry prometheus.Registerer // Required for metrics.
	Logger   Logger                // Required for logging.
}

func (c *Config) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// PoolSystem provides a concurrency-safe layer over a PoolRegistry.
// Every mutation runs under a mutex and bumps the sequence number; readers get
// the last published view through an atomic pointer without locking.
type PoolSystem struct {
	mu         sync.Mutex
	registry   *PoolRegistry
	sequence   uint64
	metrics    *Metrics
	logger     Logger
	cachedView atomic.Pointer[engine.State]
}

// NewPoolSystem creates an empty system.
func NewPoolSystem(cfg *Config) (*PoolSystem, error) {
	return newPoolSystem(cfg, NewPoolRegistry(), 0)
}

// NewPoolSystemFromView restores a system from a published view, keeping its sequence.
func NewPoolSystemFromView(view *engine.State, cfg *Config) (*PoolSystem, error) {
	registry, err := NewPoolRegistryFromView(view)
	if err != nil {
		return nil, err
	}
	return newPoolSystem(cfg, registry, view.Sequence)
}

func newPoolSystem(cfg *Config, registry *PoolRegistry, sequence uint64) (*PoolSystem, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	metrics, err := NewMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}

	s := &PoolSystem{
		registry: registry,
		sequence: sequence,
		metrics:  metrics,
		logger:   cfg.Logger,
	}
	for _, variant := range variants() {
		s.metrics.pools.WithLabelValues(variant.String()).Set(float64(len(registry.snapshots(variant))))
	}
	s.cachedView.Store(s.registry.view(s.sequence))
	return s, nil
}

// updateCachedView advances the sequence and publishes a fresh view.
// This method MUST be called from within the lock.
func (s *PoolSystem) updateCachedView() {
	s.sequence++
	s.cachedView.Store(s.registry.view(s.sequence))
}

// --- Write Methods ---

// CreatePool registers an empty pool and returns its ID.
func (s *PoolSystem) CreatePool(variant Variant, tokenOne, tokenTwo common.Address, feeBps uint16) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	id, err := s.registry.create(variant, tokenOne, tokenTwo, feeBps)
	s.metrics.observe(variant, opCreate, time.Since(start), err)
	if err != nil {
		s.logger.Warn("pool creation rejected", "variant", variant.String(), "tokenOne", tokenOne, "tokenTwo", tokenTwo, "feeBps", feeBps, "error", err)
		return 0, err
	}

	s.metrics.pools.WithLabelValues(variant.String()).Inc()
	s.updateCachedView()
	s.logger.Info("pool created", "id", id, "variant", variant.String(), "tokenOne", tokenOne, "tokenTwo", tokenTwo, "feeBps", feeBps)
	return id, nil
}

// Swap sells amountIn on pool id and returns the amount bought.
func (s *PoolSystem) Swap(id uint64, amountIn uint64, inputIsTokenOne bool) (uint64, error) {
	var amountOut uint64
	err := s.mutate(id, opSwap, func(p Pool) (err error) {
		amountOut, err = p.Swap(amountIn, inputIsTokenOne)
		return err
	}, "amountIn", amountIn, "inputIsTokenOne", inputIsTokenOne)
	return amountOut, err
}

// AddLiquidity deposits into pool id and returns the minted liquidity.
func (s *PoolSystem) AddLiquidity(id uint64, amountOne, amountTwo uint64) (uint64, error) {
	var minted uint64
	err := s.mutate(id, opAddLiquidity, func(p Pool) (err error) {
		minted, err = p.AddLiquidity(amountOne, amountTwo)
		return err
	}, "amountOne", amountOne, "amountTwo", amountTwo)
	return minted, err
}

// RemoveLiquidity burns liquidity from pool id and returns the withdrawn amounts.
func (s *PoolSystem) RemoveLiquidity(id uint64, liquidity uint64) (uint64, uint64, error) {
	var amountOne, amountTwo uint64
	err := s.mutate(id, opRemoveLiquidity, func(p Pool) (err error) {
		amountOne, amountTwo, err = p.RemoveLiquidity(liquidity)
		return err
	}, "liquidity", liquidity)
	return amountOne, amountTwo, err
}

// mutate runs op against pool id under the lock and publishes the result.
// Pools leave their state untouched on error, so a failed op publishes nothing.
func (s *PoolSystem) mutate(id uint64, op string, fn func(Pool) error, logArgs ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.registry.get(id)
	if err != nil {
		return err
	}

	before := e.pool.State()
	start := time.Now()
	err = fn(e.pool)
	s.metrics.observe(e.variant, op, time.Since(start), err)

	args := append([]any{"id", id, "variant", e.variant.String(), "operation", op}, logArgs...)
	if err != nil {
		s.logger.Debug("pool operation rejected", append(args, "error", err)...)
		return err
	}

	s.metrics.addFees(e.variant, before, e.pool.State())
	s.updateCachedView()
	s.logger.Debug("pool operation applied", append(args, "sequence", s.sequence)...)
	return nil
}

// --- Read Methods ---

// Pool returns a snapshot of pool id and its variant.
func (s *PoolSystem) Pool(id uint64) (pool.Snapshot, Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.registry.get(id)
	if err != nil {
		return pool.Snapshot{}, InvalidVariant, err
	}
	return pool.Snapshot{ID: e.id, State: e.pool.State()}, e.variant, nil
}

// PoolByKey returns the snapshot of the pool registered under key.
func (s *PoolSystem) PoolByKey(key common.Hash) (pool.Snapshot, Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.registry.lookup(key)
	if err != nil {
		return pool.Snapshot{}, InvalidVariant, err
	}
	return pool.Snapshot{ID: e.id, State: e.pool.State()}, e.variant, nil
}

// PoolsForToken returns the IDs of every pool holding token, in ascending order.
func (s *PoolSystem) PoolsForToken(token common.Address) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.poolsForToken(token)
}

// View returns a copy of the last published state. It never blocks on writers,
// and the caller may modify the result freely.
func (s *PoolSystem) View() *engine.State {
	cached := s.cachedView.Load()
	if cached == nil {
		return &engine.State{}
	}

	protocols := make(map[engine.ProtocolID]engine.ProtocolState, len(cached.Protocols))
	for id, ps := range cached.Protocols {
		if snapshots, ok := ps.Data.([]pool.Snapshot); ok {
			ps.Data = slices.Clone(snapshots)
		}
		ps.Meta.Tags = slices.Clone(ps.Meta.Tags)
		protocols[id] = ps
	}

	return &engine.State{
		Sequence:  cached.Sequence,
		Timestamp: cached.Timestamp,
		Protocols: protocols,
	}
}
