package app

import (
	"github.com/gorilla/mux"
	"github.com/klokku/worklog/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Worklog dashboard
	r.HandleFunc("/api/worklog/dashboard", deps.DashboardHandler.GetDashboard).Methods("GET")
	r.HandleFunc("/api/worklog/dashboard/refetch", deps.DashboardHandler.Refetch).Methods("POST")
	r.HandleFunc("/api/worklog/stats", deps.DashboardHandler.GetStats).Methods("GET")
}
