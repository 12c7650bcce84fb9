package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klokku/worklog/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceTest(t *testing.T, static bool) (*ServiceImpl, *FetcherStub, *utils.MockClock) {
	fetcher := NewFetcherStub()
	clock := &utils.MockClock{FixedNow: time.Date(2023, time.December, 15, 9, 0, 0, 0, time.UTC)}
	service := NewServiceImpl(StaticClassifier(static), fetcher, clock, DefaultEndpoint, DefaultStaticDelay)
	t.Cleanup(fetcher.Reset)
	return service, fetcher, clock
}

func TestServiceImpl_GetDashboardData_Static(t *testing.T) {
	date := time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC)

	t.Run("should return fallback data for any parameters without fetching", func(t *testing.T) {
		for _, params := range []QueryParameters{
			{},
			{SelectedGroup: ptr("team-a")},
			{SelectedGroup: ptr("team-a"), SelectedDate: &date},
		} {
			// given
			service, fetcher, _ := setupServiceTest(t, true)

			// when
			data := service.GetDashboardData(context.Background(), params)

			// then
			assert.Equal(t, FallbackData(), data)
			assert.Empty(t, fetcher.RequestedURLs())
		}
	})

	t.Run("should wait the simulated delay first", func(t *testing.T) {
		// given
		service, _, clock := setupServiceTest(t, true)

		// when
		service.GetDashboardData(context.Background(), QueryParameters{})

		// then
		assert.Equal(t, []time.Duration{500 * time.Millisecond}, clock.Sleeps())
		assert.Equal(t, int64(1), service.Stats().StaticServed)
	})

	t.Run("should take at least 500ms with the system clock", func(t *testing.T) {
		// given
		service := NewServiceImpl(StaticClassifier(true), NewFetcherStub(), utils.SystemClock{}, DefaultEndpoint, DefaultStaticDelay)
		start := time.Now()

		// when
		data := service.GetDashboardData(context.Background(), QueryParameters{SelectedGroup: ptr("team-a")})

		// then
		assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
		assert.Equal(t, FallbackData(), data)
	})

	t.Run("should still return fallback data when cancelled during the delay", func(t *testing.T) {
		// given
		service := NewServiceImpl(StaticClassifier(true), NewFetcherStub(), utils.SystemClock{}, DefaultEndpoint, time.Hour)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		// when
		data := service.GetDashboardData(ctx, QueryParameters{})

		// then
		assert.Equal(t, FallbackData(), data)
	})
}

func TestServiceImpl_GetDashboardData_Live(t *testing.T) {
	date := time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC)

	t.Run("should return the fetched data unmodified", func(t *testing.T) {
		// given
		service, fetcher, clock := setupServiceTest(t, false)
		fetcher.SetData("/api/dashboard?group=team-a&date=2023-12-15", backendData)

		// when
		data := service.GetDashboardData(context.Background(), QueryParameters{SelectedGroup: ptr("team-a"), SelectedDate: &date})

		// then
		assert.Equal(t, backendData, data)
		assert.Equal(t, []string{"/api/dashboard?group=team-a&date=2023-12-15"}, fetcher.RequestedURLs())
		assert.Empty(t, clock.Sleeps())
		assert.Equal(t, int64(1), service.Stats().LiveServed)
	})

	t.Run("should return equal results for repeated calls", func(t *testing.T) {
		// given
		service, fetcher, _ := setupServiceTest(t, false)
		fetcher.SetData("/api/dashboard", backendData)

		// when
		first := service.GetDashboardData(context.Background(), QueryParameters{})
		second := service.GetDashboardData(context.Background(), QueryParameters{})

		// then
		assert.Equal(t, first, second)
		assert.Len(t, fetcher.RequestedURLs(), 2)
	})

	failures := []struct {
		name  string
		err   error
		stats func(Stats) int64
	}{
		{"transport", &TransportError{URL: "/api/dashboard", Err: errors.New("connection refused")}, func(s Stats) int64 { return s.TransportFailed }},
		{"http status", &HttpStatusError{URL: "/api/dashboard", Status: 500}, func(s Stats) int64 { return s.HttpStatusFailed }},
		{"decode", &DecodeError{URL: "/api/dashboard", Err: errors.New("unexpected EOF")}, func(s Stats) int64 { return s.DecodeFailed }},
		{"untyped", errors.New("something else"), func(s Stats) int64 { return s.TransportFailed }},
	}
	for _, failure := range failures {
		t.Run("should fall back on "+failure.name+" failure", func(t *testing.T) {
			// given
			service, fetcher, clock := setupServiceTest(t, false)
			fetcher.SetError(failure.err)

			// when
			data := service.GetDashboardData(context.Background(), QueryParameters{})

			// then
			assert.Equal(t, FallbackData(), data)
			assert.Len(t, fetcher.RequestedURLs(), 1, "no retry expected")
			assert.Empty(t, clock.Sleeps())
			assert.Equal(t, int64(1), failure.stats(service.Stats()))
			assert.Equal(t, int64(0), service.Stats().LiveServed)
		})
	}

	t.Run("should fall back when a real backend answers 500", func(t *testing.T) {
		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()
		service := NewServiceImpl(NewOriginClassifier("http://localhost:5173"), NewHTTPFetcher(server.URL, server.Client()),
			&utils.MockClock{}, DefaultEndpoint, DefaultStaticDelay)

		// when
		data := service.GetDashboardData(context.Background(), QueryParameters{})

		// then
		assert.Equal(t, "32.5h", data.TotalHours)
		assert.Len(t, data.AssigneeWorklogs, 4)
		assert.Len(t, data.Tasks, 3)
		assert.Equal(t, FallbackData(), data)
		assert.Equal(t, int64(1), service.Stats().HttpStatusFailed)
	})

	t.Run("should try again on the next call after a failure", func(t *testing.T) {
		// given
		service, fetcher, _ := setupServiceTest(t, false)
		fetcher.SetError(&TransportError{Err: errors.New("timeout")})
		first := service.GetDashboardData(context.Background(), QueryParameters{})
		require.Equal(t, FallbackData(), first)
		fetcher.SetError(nil)
		fetcher.SetData("/api/dashboard", backendData)

		// when
		second := service.GetDashboardData(context.Background(), QueryParameters{})

		// then
		assert.Equal(t, backendData, second)
	})
}
