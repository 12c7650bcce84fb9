package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/klokku/worklog/internal/utils"
	log "github.com/sirupsen/logrus"
)

const DefaultStaticDelay = 500 * time.Millisecond

type Service interface {
	// GetDashboardData always returns usable data, falling back to the static dataset.
	GetDashboardData(ctx context.Context, params QueryParameters) DashboardData
	Stats() Stats
}

// Stats counts retrieval outcomes since start.
type Stats struct {
	StaticServed     int64 `json:"staticServed"`
	LiveServed       int64 `json:"liveServed"`
	TransportFailed  int64 `json:"transportFailed"`
	HttpStatusFailed int64 `json:"httpStatusFailed"`
	DecodeFailed     int64 `json:"decodeFailed"`
}

type ServiceImpl struct {
	classifier  EnvironmentClassifier
	fetcher     Fetcher
	clock       utils.Clock
	endpoint    string
	staticDelay time.Duration

	staticServed     atomic.Int64
	liveServed       atomic.Int64
	transportFailed  atomic.Int64
	httpStatusFailed atomic.Int64
	decodeFailed     atomic.Int64
}

func NewServiceImpl(classifier EnvironmentClassifier, fetcher Fetcher, clock utils.Clock, endpoint string, staticDelay time.Duration) *ServiceImpl {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &ServiceImpl{
		classifier:  classifier,
		fetcher:     fetcher,
		clock:       clock,
		endpoint:    endpoint,
		staticDelay: staticDelay,
	}
}

func (s *ServiceImpl) GetDashboardData(ctx context.Context, params QueryParameters) DashboardData {
	if s.classifier.IsStaticDeployment() {
		return s.serveStatic(ctx)
	}

	request := BuildDashboardRequest(s.endpoint, params)
	data, err := s.fetcher.Fetch(ctx, request.URL)
	if err != nil {
		s.recordFailure(request, err)
		return FallbackData()
	}

	if err := data.Validate(); err != nil {
		log.WithField("url", request.URL).Debugf("Dashboard data breaks an invariant, serving it anyway: %v", err)
	}
	s.liveServed.Add(1)
	return data
}

func (s *ServiceImpl) serveStatic(ctx context.Context) DashboardData {
	if err := s.clock.Sleep(ctx, s.staticDelay); err != nil {
		log.Debugf("Static delay interrupted: %v", err)
	}
	s.staticServed.Add(1)
	return FallbackData()
}

func (s *ServiceImpl) recordFailure(request Request, err error) {
	logger := log.WithField("url", request.URL)

	var fetchErr FetchError
	if !errors.As(err, &fetchErr) {
		// fetchers outside this package may return plain errors; treat them as transport failures
		fetchErr = &TransportError{URL: request.URL, Err: err}
	}

	switch e := fetchErr.(type) {
	case *TransportError:
		s.transportFailed.Add(1)
		logger.WithField("kind", e.Kind()).Warnf("Dashboard API not available, using fallback data: %v", e.Err)
	case *HttpStatusError:
		s.httpStatusFailed.Add(1)
		logger.WithFields(log.Fields{"kind": e.Kind(), "status": e.Status}).Warn("Dashboard API returned an error, using fallback data")
	case *DecodeError:
		s.decodeFailed.Add(1)
		logger.WithField("kind", e.Kind()).Warnf("Dashboard API returned malformed data, using fallback data: %v", e.Err)
	}
}

func (s *ServiceImpl) Stats() Stats {
	return Stats{
		StaticServed:     s.staticServed.Load(),
		LiveServed:       s.liveServed.Load(),
		TransportFailed:  s.transportFailed.Load(),
		HttpStatusFailed: s.httpStatusFailed.Load(),
		DecodeFailed:     s.decodeFailed.Load(),
	}
}
