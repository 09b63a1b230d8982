package poolregistry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/defistate/defistate-amm-go/engine"
	"github.com/defistate/defistate-amm-go/protocols/pool"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrPoolNotFound is returned for an ID or key the registry does not hold.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrPoolExists is returned when a pool with the same key is already registered.
	ErrPoolExists = errors.New("pool already exists")
)

// entry is one registered pool.
type entry struct {
	id      uint64
	variant Variant
	key     common.Hash
	pool    Pool
}

// PoolRegistry indexes pools by ID, key and token.
// It is NOT safe for concurrent use; PoolSystem serializes access to it.
type PoolRegistry struct {
	nextID  uint64
	pools   map[uint64]*entry
	byKey   map[common.Hash]uint64
	byToken map[common.Address]mapset.Set[uint64]
}

// NewPoolRegistry creates an empty registry. Pool IDs start at 1.
func NewPoolRegistry() *PoolRegistry {
	return &PoolRegistry{
		nextID:  1,
		pools:   make(map[uint64]*entry),
		byKey:   make(map[common.Hash]uint64),
		byToken: make(map[common.Address]mapset.Set[uint64]),
	}
}

// NewPoolRegistryFromView rebuilds a registry from a published view.
func NewPoolRegistryFromView(view *engine.State) (*PoolRegistry, error) {
	r := NewPoolRegistry()
	for protocolID, protocolState := range view.Protocols {
		variant, err := variantForSchema(protocolState.Schema)
		if err != nil {
			return nil, fmt.Errorf("protocol %s: %w", protocolID, err)
		}
		snapshots, err := snapshotsOf(protocolState.Data)
		if err != nil {
			return nil, fmt.Errorf("protocol %s: %w", protocolID, err)
		}
		for _, s := range snapshots {
			if err := r.insert(s.ID, variant, s.State); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// create registers a new empty pool and returns its ID.
func (r *PoolRegistry) create(variant Variant, tokenOne, tokenTwo common.Address, feeBps uint16) (uint64, error) {
	state, err := pool.NewState(tokenOne, tokenTwo, feeBps)
	if err != nil {
		return 0, err
	}
	id := r.nextID
	if err := r.insert(id, variant, state); err != nil {
		return 0, err
	}
	return id, nil
}

// insert adds a pool under a known ID. Nothing is modified on error.
func (r *PoolRegistry) insert(id uint64, variant Variant, state pool.State) error {
	newModel, ok := Models[variant]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}
	if state.TokenOne == state.TokenTwo {
		return fmt.Errorf("%w: %s", pool.ErrSameToken, state.TokenOne)
	}
	if _, exists := r.pools[id]; exists {
		return fmt.Errorf("%w: id %d", ErrPoolExists, id)
	}
	key := PoolKey(variant, state.TokenOne, state.TokenTwo, state.FeeBps)
	if existing, exists := r.byKey[key]; exists {
		return fmt.Errorf("%w: %s %s/%s fee %d is pool %d", ErrPoolExists, variant, state.TokenOne, state.TokenTwo, state.FeeBps, existing)
	}

	p, err := newModel(state)
	if err != nil {
		return err
	}

	r.pools[id] = &entry{id: id, variant: variant, key: key, pool: p}
	r.byKey[key] = id
	for _, token := range []common.Address{state.TokenOne, state.TokenTwo} {
		set, ok := r.byToken[token]
		if !ok {
			set = mapset.NewThreadUnsafeSet[uint64]()
			r.byToken[token] = set
		}
		set.Add(id)
	}
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return nil
}

func (r *PoolRegistry) get(id uint64) (*entry, error) {
	e, ok := r.pools[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrPoolNotFound, id)
	}
	return e, nil
}

func (r *PoolRegistry) lookup(key common.Hash) (*entry, error) {
	id, ok := r.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %s", ErrPoolNotFound, key)
	}
	return r.pools[id], nil
}

// poolsForToken returns the IDs of every pool holding token, in ascending order.
func (r *PoolRegistry) poolsForToken(token common.Address) []uint64 {
	set, ok := r.byToken[token]
	if !ok || set.Cardinality() == 0 {
		return nil
	}
	ids := set.ToSlice()
	slices.Sort(ids)
	return ids
}

// snapshots returns a copy of every pool of one variant, ordered by ID.
func (r *PoolRegistry) snapshots(variant Variant) []pool.Snapshot {
	out := make([]pool.Snapshot, 0)
	for id, e := range r.pools {
		if e.variant == variant {
			out = append(out, pool.Snapshot{ID: id, State: e.pool.State()})
		}
	}
	slices.SortFunc(out, func(a, b pool.Snapshot) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// view builds a published state holding one protocol entry per variant.
func (r *PoolRegistry) view(sequence uint64) *engine.State {
	protocols := make(map[engine.ProtocolID]engine.ProtocolState, len(Models))
	for _, variant := range variants() {
		protocols[variant.ProtocolID()] = engine.ProtocolState{
			Meta:   variant.meta(),
			Schema: variant.Schema(),
			Data:   r.snapshots(variant),
		}
	}
	return &engine.State{
		Sequence:  sequence,
		Timestamp: uint64(time.Now().UnixNano()),
		Protocols: protocols,
	}
}
