package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/klokku/worklog/internal/rest"
	"github.com/klokku/worklog/pkg/querycache"
	log "github.com/sirupsen/logrus"
)

const (
	FetchedAtHeader = "X-Data-Fetched-At"
	StaleHeader     = "X-Data-Stale"
)

type Handler struct {
	query    *Query
	service  Service
	location *time.Location
}

func NewHandler(query *Query, service Service, location *time.Location) *Handler {
	if location == nil {
		location = time.Local
	}
	return &Handler{query: query, service: service, location: location}
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	result := h.query.Get(r.Context(), params)
	if result.Status != querycache.StatusSuccess {
		rest.WriteError(w, http.StatusServiceUnavailable, "Dashboard data is still loading", "retry the request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(FetchedAtHeader, result.FetchedAt.UTC().Format(time.RFC3339))
	w.Header().Set(StaleHeader, strconv.FormatBool(result.IsStale))
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result.Data); err != nil {
		log.Errorf("Failed to encode dashboard data: %v", err)
	}
}

func (h *Handler) Refetch(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}
	h.query.Refetch(r.Context(), params)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.service.Stats()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// parseParams keeps "group=" (present but empty) apart from a missing group.
func (h *Handler) parseParams(w http.ResponseWriter, r *http.Request) (QueryParameters, bool) {
	var params QueryParameters
	query := r.URL.Query()

	if query.Has("group") {
		group := query.Get("group")
		params.SelectedGroup = &group
	}
	if query.Has("date") {
		date, err := ParseDate(query.Get("date"), h.location)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "date must be in YYYY-MM-DD format")
			return QueryParameters{}, false
		}
		params.SelectedDate = &date
	}
	return params, true
}
