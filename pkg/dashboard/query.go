package dashboard

import (
	"context"
	"time"

	"github.com/klokku/worklog/pkg/querycache"
	log "github.com/sirupsen/logrus"
)

type Result = querycache.Result[DashboardData]

// Query is the cached, re-fetchable view of Service used by consumers.
type Query struct {
	service  Service
	endpoint string
	cache    *querycache.Cache[CacheKey, DashboardData]
}

// NewQuery hands out copies of cached snapshots unless opts.Clone says otherwise.
func NewQuery(service Service, endpoint string, opts querycache.Options[DashboardData]) *Query {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if opts.Clone == nil {
		opts.Clone = DashboardData.Clone
	}
	q := &Query{service: service, endpoint: endpoint}
	q.cache = querycache.New[CacheKey, DashboardData](q.load, opts)
	return q
}

func (q *Query) load(ctx context.Context, key CacheKey) DashboardData {
	log.Debugf("Loading dashboard data for %+v", key)
	return q.service.GetDashboardData(ctx, key.Params())
}

func (q *Query) Key(params QueryParameters) CacheKey {
	return BuildDashboardRequest(q.endpoint, params).CacheKey
}

func (q *Query) Get(ctx context.Context, params QueryParameters) Result {
	return q.cache.Get(ctx, q.Key(params))
}

// Subscribe is the "mount" of a consumer: it always triggers a fresh retrieval.
func (q *Query) Subscribe(ctx context.Context, params QueryParameters, listener func(Result)) (Result, func()) {
	return q.cache.Subscribe(ctx, q.Key(params), listener)
}

func (q *Query) Refetch(ctx context.Context, params QueryParameters) {
	q.cache.Refetch(ctx, q.Key(params))
}

func (q *Query) State(params QueryParameters) querycache.State {
	return q.cache.State(q.Key(params))
}

// Wait blocks until in-flight retrievals have finished.
func (q *Query) Wait() {
	q.cache.Wait()
}

// Params reverses BuildDashboardRequest's key construction.
func (k CacheKey) Params() QueryParameters {
	var params QueryParameters
	if k.HasGroup {
		group := k.Group
		params.SelectedGroup = &group
	}
	if k.HasDate {
		date, err := time.Parse(time.RFC3339Nano, k.Date)
		if err != nil {
			log.Errorf("invalid date in cache key %q: %v", k.Date, err)
		} else {
			params.SelectedDate = &date
		}
	}
	return params
}
