package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const RequestIdHeader = "X-Request-Id"

// Fetcher performs a single attempt to load dashboard data. Errors are always FetchError values.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (DashboardData, error)
}

type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher resolves request URLs against baseURL. A nil client means http.DefaultClient.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (DashboardData, error) {
	fullURL := f.baseURL + url
	requestId := uuid.NewString()
	logger := log.WithFields(log.Fields{"url": fullURL, "requestId": requestId})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		logger.Debugf("Failed to create request: %v", err)
		return DashboardData{}, &TransportError{URL: fullURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIdHeader, requestId)

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Debugf("Failed to execute request: %v", err)
		return DashboardData{}, &TransportError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debugf("Dashboard backend returned status %d", resp.StatusCode)
		return DashboardData{}, &HttpStatusError{URL: fullURL, Status: resp.StatusCode}
	}

	var data *DashboardData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.Debugf("Failed to decode response: %v", err)
		return DashboardData{}, &DecodeError{URL: fullURL, Err: err}
	}
	if data == nil {
		logger.Debug("Dashboard backend returned a null body")
		return DashboardData{}, &DecodeError{URL: fullURL, Err: ErrNullBody}
	}

	logger.Debug("Dashboard data fetched")
	return *data, nil
}
