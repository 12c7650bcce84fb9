package app

import (
	"net/http"

	"github.com/klokku/worklog/internal/config"
	"github.com/klokku/worklog/internal/event_bus"
	"github.com/klokku/worklog/internal/utils"
	"github.com/klokku/worklog/pkg/dashboard"
	"github.com/klokku/worklog/pkg/querycache"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Classifier       dashboard.EnvironmentClassifier
	DashboardFetcher dashboard.Fetcher
	DashboardService *dashboard.ServiceImpl
	DashboardQuery   *dashboard.Query
	DashboardHandler *dashboard.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.Classifier = newClassifier(cfg)
	deps.DashboardFetcher = dashboard.NewHTTPFetcher(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout})
	deps.DashboardService = dashboard.NewServiceImpl(deps.Classifier, deps.DashboardFetcher, deps.Clock, cfg.Backend.Endpoint, cfg.Static.Delay)
	deps.DashboardQuery = dashboard.NewQuery(deps.DashboardService, cfg.Backend.Endpoint, querycache.Options[dashboard.DashboardData]{
		StaleTime:  cfg.Cache.StaleTime,
		EvictAfter: cfg.Cache.EvictAfter,
		Clock:      deps.Clock,
		Bus:        deps.EventBus,
	})
	deps.DashboardHandler = dashboard.NewHandler(deps.DashboardQuery, deps.DashboardService, nil)

	return deps
}

func newClassifier(cfg config.Application) dashboard.EnvironmentClassifier {
	switch cfg.Mode {
	case config.ModeStatic:
		return dashboard.StaticClassifier(true)
	case config.ModeLive:
		return dashboard.StaticClassifier(false)
	default:
		return dashboard.NewOriginClassifier(cfg.Origin)
	}
}
