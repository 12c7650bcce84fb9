// Package querycache keeps the latest result of an asynchronous query per key
// and revalidates it with stale-while-fetch semantics.
package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/klokku/worklog/internal/event_bus"
	"github.com/klokku/worklog/internal/utils"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultStaleTime  = 5 * time.Minute
	DefaultEvictAfter = 30 * time.Minute
)

type State string

const (
	StateEmpty    State = "empty"
	StateFetching State = "fetching"
	StateFresh    State = "fresh"
	StateStale    State = "stale"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
)

// Result is what a reader sees for a key. There is no error status: fetch
// functions always produce a value.
type Result[V any] struct {
	Data       V
	Status     Status
	FetchedAt  time.Time
	IsFetching bool
	IsStale    bool
}

// Update is the payload of event_bus.QueryUpdated events. Version grows with
// every state change of the key.
type Update[K comparable, V any] struct {
	Key     K
	Result  Result[V]
	Version uint64
	source  any
}

// FetchFunc loads the value for key. It can't fail.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) V

type Options[V any] struct {
	StaleTime time.Duration
	// EvictAfter drops entries nobody subscribed to or read for this long.
	EvictAfter time.Duration
	Clock      utils.Clock
	Bus        *event_bus.EventBus
	// Clone copies values handed out to readers. Nil hands out the cached value itself.
	Clone func(V) V
}

type entry[V any] struct {
	value       V
	hasValue    bool
	fetchedAt   time.Time
	inFlight    int
	generation  uint64 // last started fetch
	accepted    uint64 // generation of value
	version     uint64
	subscribers int
	lastUsed    time.Time
	ready       chan struct{}
}

type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	entries    map[K]*entry[V]
	fetch      FetchFunc[K, V]
	staleTime  time.Duration
	evictAfter time.Duration
	clock      utils.Clock
	bus        *event_bus.EventBus
	clone      func(V) V
	wg         sync.WaitGroup
}

func New[K comparable, V any](fetch FetchFunc[K, V], opts Options[V]) *Cache[K, V] {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.EvictAfter <= 0 {
		opts.EvictAfter = DefaultEvictAfter
	}
	if opts.Clock == nil {
		opts.Clock = utils.SystemClock{}
	}
	if opts.Bus == nil {
		opts.Bus = event_bus.NewEventBus()
	}
	return &Cache[K, V]{
		entries:    make(map[K]*entry[V]),
		fetch:      fetch,
		staleTime:  opts.StaleTime,
		evictAfter: opts.EvictAfter,
		clock:      opts.Clock,
		bus:        opts.Bus,
		clone:      opts.Clone,
	}
}

// Get returns the value for key. The first read of a key waits for the
// initial fetch or for ctx; a stale value is returned immediately while a
// background revalidation runs.
func (c *Cache[K, V]) Get(ctx context.Context, key K) Result[V] {
	c.mu.Lock()
	e := c.entryLocked(key)

	if !e.hasValue {
		var update *Update[K, V]
		if e.inFlight == 0 {
			update = c.startFetchLocked(ctx, key, e)
		}
		ready := e.ready
		c.mu.Unlock()
		c.publish(ctx, update)

		select {
		case <-ready:
		case <-ctx.Done():
			log.Debugf("querycache: stopped waiting for %v: %v", key, ctx.Err())
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.resultLocked(e)
	}

	var update *Update[K, V]
	if c.isStaleLocked(e) && e.inFlight == 0 {
		log.Debugf("querycache: value for %v is stale, revalidating", key)
		update = c.startFetchLocked(ctx, key, e)
	}
	result := c.resultLocked(e)
	c.mu.Unlock()
	c.publish(ctx, update)
	return result
}

// Subscribe registers listener for updates of key and always starts a
// revalidation, even when the cached value is fresh. Unsubscribing doesn't
// abort the fetch. listener may be nil.
//
// A listener is called by one goroutine at a time and never sees an update
// older than one it has already seen; updates arriving while it is busy are
// coalesced into the latest.
func (c *Cache[K, V]) Subscribe(ctx context.Context, key K, listener func(Result[V])) (Result[V], func()) {
	unsubscribe := func() {}
	if listener != nil {
		d := &delivery[V]{listener: listener}
		unsubscribeBus := event_bus.SubscribeTyped(c.bus, event_bus.QueryUpdated, func(e event_bus.EventT[Update[K, V]]) error {
			if e.Data.source != c || e.Data.Key != key {
				return nil
			}
			d.offer(e.Data.Version, e.Data.Result)
			return nil
		})
		var once sync.Once
		unsubscribe = func() {
			once.Do(func() {
				unsubscribeBus()
				c.mu.Lock()
				defer c.mu.Unlock()
				if e, ok := c.entries[key]; ok {
					e.subscribers--
					e.lastUsed = c.clock.Now()
				}
			})
		}
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if listener != nil {
		e.subscribers++
	}
	update := c.startFetchLocked(ctx, key, e)
	result := c.resultLocked(e)
	c.mu.Unlock()
	c.publish(ctx, update)

	return result, unsubscribe
}

// Refetch starts a background revalidation of key.
func (c *Cache[K, V]) Refetch(ctx context.Context, key K) {
	c.mu.Lock()
	update := c.startFetchLocked(ctx, key, c.entryLocked(key))
	c.mu.Unlock()
	c.publish(ctx, update)
}

// Peek returns the current result without triggering anything.
func (c *Cache[K, V]) Peek(key K) Result[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Result[V]{Status: StatusLoading}
	}
	return c.resultLocked(e)
}

func (c *Cache[K, V]) State(key K) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	switch {
	case !ok || (!e.hasValue && e.inFlight == 0):
		return StateEmpty
	case e.inFlight > 0:
		return StateFetching
	case c.isStaleLocked(e):
		return StateStale
	default:
		return StateFresh
	}
}

// Wait blocks until all fetches started so far have completed.
func (c *Cache[K, V]) Wait() {
	c.wg.Wait()
}

func (c *Cache[K, V]) entryLocked(key K) *entry[V] {
	now := c.clock.Now()
	e, ok := c.entries[key]
	if !ok {
		c.evictIdleLocked(now)
		e = &entry[V]{ready: make(chan struct{})}
		c.entries[key] = e
	}
	e.lastUsed = now
	return e
}

// evictIdleLocked runs whenever a key is added, so the map only grows while
// entries are in use.
func (c *Cache[K, V]) evictIdleLocked(now time.Time) {
	for key, e := range c.entries {
		if e.subscribers == 0 && e.inFlight == 0 && now.Sub(e.lastUsed) >= c.evictAfter {
			log.Debugf("querycache: evicting idle entry %v", key)
			delete(c.entries, key)
		}
	}
}

func (c *Cache[K, V]) isStaleLocked(e *entry[V]) bool {
	return e.hasValue && c.clock.Now().Sub(e.fetchedAt) >= c.staleTime
}

func (c *Cache[K, V]) resultLocked(e *entry[V]) Result[V] {
	result := Result[V]{
		Status:     StatusLoading,
		IsFetching: e.inFlight > 0,
	}
	if e.hasValue {
		result.Data = e.value
		if c.clone != nil {
			result.Data = c.clone(e.value)
		}
		result.Status = StatusSuccess
		result.FetchedAt = e.fetchedAt
		result.IsStale = c.isStaleLocked(e)
	}
	return result
}

// updateLocked stamps a new version on e and snapshots it for subscribers.
func (c *Cache[K, V]) updateLocked(key K, e *entry[V]) *Update[K, V] {
	e.version++
	return &Update[K, V]{Key: key, Result: c.resultLocked(e), Version: e.version, source: c}
}

// startFetchLocked runs the fetch on a context detached from ctx's
// cancellation, so abandoned readers don't abort it.
func (c *Cache[K, V]) startFetchLocked(ctx context.Context, key K, e *entry[V]) *Update[K, V] {
	e.generation++
	generation := e.generation
	e.inFlight++
	fetchCtx := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		value := c.fetch(fetchCtx, key)
		c.complete(fetchCtx, key, e, generation, value)
	}()
	return c.updateLocked(key, e)
}

func (c *Cache[K, V]) complete(ctx context.Context, key K, e *entry[V], generation uint64, value V) {
	c.mu.Lock()
	e.inFlight--
	if generation > e.accepted {
		e.value = value
		e.hasValue = true
		e.fetchedAt = c.clock.Now()
		e.accepted = generation
		select {
		case <-e.ready:
		default:
			close(e.ready)
		}
	} else {
		log.Debugf("querycache: discarding result of fetch %d for %v, fetch %d already resolved", generation, key, e.accepted)
	}
	update := c.updateLocked(key, e)
	c.mu.Unlock()
	c.publish(ctx, update)
}

func (c *Cache[K, V]) publish(ctx context.Context, update *Update[K, V]) {
	if update == nil {
		return
	}
	if err := c.bus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.QueryUpdated, *update)); err != nil {
		log.Errorf("querycache: failed to notify subscribers of %v: %v", update.Key, err)
	}
}

// delivery serializes calls to one listener and drops out-of-order updates.
type delivery[V any] struct {
	mu         sync.Mutex
	listener   func(Result[V])
	seen       uint64
	pending    *Result[V]
	delivering bool
}

func (d *delivery[V]) offer(version uint64, result Result[V]) {
	d.mu.Lock()
	if version <= d.seen {
		d.mu.Unlock()
		return
	}
	d.seen = version
	d.pending = &result
	if d.delivering {
		// the goroutine already delivering picks it up
		d.mu.Unlock()
		return
	}
	d.delivering = true
	for d.pending != nil {
		next := *d.pending
		d.pending = nil
		d.mu.Unlock()
		d.call(next)
		d.mu.Lock()
	}
	d.delivering = false
	d.mu.Unlock()
}

func (d *delivery[V]) call(result Result[V]) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("querycache: listener panicked: %v", r)
		}
	}()
	d.listener(result)
}
