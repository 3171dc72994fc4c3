package service

import (
	"context"
	"sync"
	"time"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
	"token_resolver/internal/pkg/metrics"
)

const (
	defaultTokenSymbol   = "G$"
	defaultTokenName     = "GoodDollar"
	defaultTokenDecimals = 18
)

// ResolverOptions configures a TokenResolver.
type ResolverOptions struct {
	// Symbol is the registry key looked up on every network change.
	Symbol string
	// Placeholder supplies Name, Symbol and Decimals of the value shown before resolution.
	// Address and ChainID are always overwritten.
	Placeholder entity.TokenInfo
	// LookupTimeout bounds a single lookup. Zero disables the timeout.
	LookupTimeout time.Duration
	// Policy decides how registry failures are handled. Defaults to BestEffortPolicy.
	Policy ResolutionPolicy
}

// Snapshot is a consistent view of the resolver state.
type Snapshot struct {
	Token entity.TokenInfo  `json:"data"`
	State entity.TokenState `json:"state"`
	Epoch uint64            `json:"epoch"`
}

// TokenResolver keeps the best-known token for the current chain ID.
//
// Every chain ID change starts a new epoch: the value drops back to the placeholder and a single
// lookup tagged with that epoch is started. A lookup result is applied only while its epoch is
// still current, so a slow answer for an old network never replaces a newer value.
type TokenResolver struct {
	registry      port.TokenRegistry
	policy        ResolutionPolicy
	logger        port.Logger
	symbol        string
	placeholder   entity.TokenInfo
	lookupTimeout time.Duration

	// notifyMu orders state changes together with their notifications.
	notifyMu sync.Mutex

	mu           sync.RWMutex
	current      entity.TokenInfo
	state        entity.TokenState
	chainID      uint64
	epoch        uint64
	cancelLookup context.CancelFunc
	closed       bool
	inflight     int
	idle         *sync.Cond // signalled on mu when inflight drops to zero

	subMu       sync.Mutex
	subscribers map[uint64]func(entity.TokenInfo)
	nextSubID   uint64

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

var _ port.TokenResolver = (*TokenResolver)(nil)

// NewTokenResolver creates a resolver showing the placeholder for the disconnected state.
func NewTokenResolver(registry port.TokenRegistry, opts ResolverOptions, logger port.Logger) *TokenResolver {
	if opts.Symbol == "" {
		opts.Symbol = defaultTokenSymbol
	}
	placeholder := opts.Placeholder
	if placeholder.Symbol == "" {
		placeholder.Symbol = opts.Symbol
	}
	if placeholder.Name == "" {
		placeholder.Name = defaultTokenName
	}
	if placeholder.Decimals == 0 {
		placeholder.Decimals = defaultTokenDecimals
	}
	placeholder.Address = entity.ZeroAddress
	placeholder.ChainID = 0

	policy := opts.Policy
	if policy == nil {
		policy = NewBestEffortPolicy(logger)
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	r := &TokenResolver{
		registry:      registry,
		policy:        policy,
		logger:        logger,
		symbol:        opts.Symbol,
		placeholder:   placeholder,
		lookupTimeout: opts.LookupTimeout,
		current:       placeholder,
		state:         entity.TokenStatePlaceholder,
		subscribers:   make(map[uint64]func(entity.TokenInfo)),
		baseCtx:       baseCtx,
		baseCancel:    baseCancel,
	}
	r.idle = sync.NewCond(&r.mu)
	return r
}

// Token returns the current value. It never blocks on a lookup.
func (r *TokenResolver) Token() entity.TokenInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// State reports whether Token is the placeholder or a resolved value.
func (r *TokenResolver) State() entity.TokenState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// ChainID returns the current identity key, 0 when disconnected.
func (r *TokenResolver) ChainID() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chainID
}

// Snapshot returns token, state and epoch read under one lock.
func (r *TokenResolver) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{Token: r.current, State: r.state, Epoch: r.epoch}
}

// Placeholder returns the placeholder value for chainID.
func (r *TokenResolver) Placeholder(chainID uint64) entity.TokenInfo {
	p := r.placeholder
	p.ChainID = chainID
	return p
}

// SetChainID switches the identity key. Setting the current key again does nothing.
// A zero chainID shows the disconnected placeholder and starts no lookup.
func (r *TokenResolver) SetChainID(chainID uint64) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if r.closed || chainID == r.chainID {
		r.mu.Unlock()
		return
	}
	if r.cancelLookup != nil {
		r.cancelLookup()
		r.cancelLookup = nil
	}
	r.epoch++
	epoch := r.epoch
	previous := r.chainID
	r.chainID = chainID
	r.current = r.Placeholder(chainID)
	r.state = entity.TokenStatePlaceholder

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if chainID != 0 {
		if r.lookupTimeout > 0 {
			ctx, cancel = context.WithTimeout(r.baseCtx, r.lookupTimeout)
		} else {
			ctx, cancel = context.WithCancel(r.baseCtx)
		}
		r.cancelLookup = cancel
		r.inflight++
	}
	token := r.current
	r.mu.Unlock()

	metrics.IdentityChangesTotal.Inc()
	r.logger.Info("Chain ID changed", "previous_chain_id", previous, "chain_id", chainID, "epoch", epoch)
	r.notify(token)

	if chainID != 0 {
		go r.lookup(ctx, cancel, chainID, epoch)
	}
}

// Disconnect drops the identity key and shows the disconnected placeholder.
func (r *TokenResolver) Disconnect() {
	r.SetChainID(0)
}

// Subscribe registers fn for every change of the observable value.
// fn runs synchronously in change order and must not call SetChainID.
func (r *TokenResolver) Subscribe(fn func(entity.TokenInfo)) (unsubscribe func()) {
	r.subMu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	r.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subscribers, id)
			r.subMu.Unlock()
		})
	}
}

// Wait blocks until every started lookup has finished. It may run concurrently with SetChainID.
func (r *TokenResolver) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.inflight > 0 {
		r.idle.Wait()
	}
}

// Close cancels in-flight lookups and waits for them. Later SetChainID calls are ignored.
func (r *TokenResolver) Close() {
	r.mu.Lock()
	r.closed = true
	if r.cancelLookup != nil {
		r.cancelLookup()
		r.cancelLookup = nil
	}
	r.mu.Unlock()

	r.baseCancel()
	r.Wait()
}

func (r *TokenResolver) lookup(ctx context.Context, cancel context.CancelFunc, chainID uint64, epoch uint64) {
	defer r.lookupDone()
	defer cancel()

	start := time.Now()
	token, outcome := r.policy.Attempt(ctx, r.registry, chainID, r.symbol)
	metrics.LookupDuration.Observe(time.Since(start).Seconds())

	if outcome == OutcomeFound {
		r.apply(chainID, epoch, token)
		return
	}
	switch {
	case !r.isCurrent(epoch):
		metrics.LookupsTotal.WithLabelValues(metrics.OutcomeStale).Inc()
	case ctx.Err() != nil:
		metrics.LookupsTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
	case outcome == OutcomeFailed:
		metrics.LookupsTotal.WithLabelValues(metrics.OutcomeError).Inc()
	default:
		metrics.LookupsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
	}
}

func (r *TokenResolver) lookupDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--
	if r.inflight == 0 {
		r.idle.Broadcast()
	}
}

func (r *TokenResolver) apply(chainID uint64, epoch uint64, found entity.TokenInfo) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if r.closed || epoch != r.epoch {
		current := r.epoch
		r.mu.Unlock()
		metrics.LookupsTotal.WithLabelValues(metrics.OutcomeStale).Inc()
		r.logger.Debug("Discarding stale token lookup", "chain_id", chainID, "lookup_epoch", epoch, "current_epoch", current)
		return
	}
	r.current = entity.TokenInfo{
		ChainID:  chainID,
		Address:  found.Address,
		Decimals: found.Decimals,
		Symbol:   found.Symbol,
		Name:     found.Name,
	}
	r.state = entity.TokenStateResolved
	r.cancelLookup = nil
	token := r.current
	r.mu.Unlock()

	metrics.LookupsTotal.WithLabelValues(metrics.OutcomeResolved).Inc()
	r.logger.Info("Token resolved", "chain_id", chainID, "symbol", token.Symbol, "address", token.Address, "decimals", token.Decimals)
	r.notify(token)
}

func (r *TokenResolver) isCurrent(epoch uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.closed && r.epoch == epoch
}

func (r *TokenResolver) notify(token entity.TokenInfo) {
	r.subMu.Lock()
	subs := make([]func(entity.TokenInfo), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	r.subMu.Unlock()

	for _, fn := range subs {
		fn(token)
	}
}
