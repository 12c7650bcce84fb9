package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestBuildDashboardRequest(t *testing.T) {
	date := time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC)

	t.Run("should put group before date", func(t *testing.T) {
		// when
		request := BuildDashboardRequest(DefaultEndpoint, QueryParameters{SelectedGroup: ptr("team-a"), SelectedDate: &date})

		// then
		assert.Equal(t, "/api/dashboard?group=team-a&date=2023-12-15", request.URL)
	})

	t.Run("should omit query string without filters", func(t *testing.T) {
		// when
		request := BuildDashboardRequest(DefaultEndpoint, QueryParameters{})

		// then
		assert.Equal(t, "/api/dashboard", request.URL)
	})

	t.Run("should build single filter URLs", func(t *testing.T) {
		assert.Equal(t, "/api/dashboard?group=team-a",
			BuildDashboardRequest(DefaultEndpoint, QueryParameters{SelectedGroup: ptr("team-a")}).URL)
		assert.Equal(t, "/api/dashboard?date=2023-12-15",
			BuildDashboardRequest(DefaultEndpoint, QueryParameters{SelectedDate: &date}).URL)
	})

	t.Run("should escape the group", func(t *testing.T) {
		// when
		request := BuildDashboardRequest(DefaultEndpoint, QueryParameters{SelectedGroup: ptr("qa & ops/#1")})

		// then
		assert.Equal(t, "/api/dashboard?group=qa+%26+ops%2F%231", request.URL)
	})

	t.Run("should format date in its own location", func(t *testing.T) {
		// given
		location := time.FixedZone("UTC+10", 10*60*60)
		lateEvening := time.Date(2023, time.December, 15, 23, 30, 0, 0, location)

		// when
		request := BuildDashboardRequest(DefaultEndpoint, QueryParameters{SelectedDate: &lateEvening})

		// then
		assert.Equal(t, "/api/dashboard?date=2023-12-15", request.URL)
	})

	t.Run("should leave an empty group out of the URL but not out of the key", func(t *testing.T) {
		// when
		empty := BuildDashboardRequest(DefaultEndpoint, QueryParameters{SelectedGroup: ptr("")})
		absent := BuildDashboardRequest(DefaultEndpoint, QueryParameters{})

		// then
		assert.Equal(t, "/api/dashboard", empty.URL)
		assert.Equal(t, absent.URL, empty.URL)
		assert.NotEqual(t, absent.CacheKey, empty.CacheKey)
	})

	t.Run("should be deterministic", func(t *testing.T) {
		params := QueryParameters{SelectedGroup: ptr("team-a"), SelectedDate: &date}
		assert.Equal(t, BuildDashboardRequest(DefaultEndpoint, params), BuildDashboardRequest(DefaultEndpoint, params))
	})

	t.Run("should give distinct keys for distinct parameters", func(t *testing.T) {
		// given
		nextDay := date.AddDate(0, 0, 1)
		sameDayLater := date.Add(time.Hour)
		combinations := []QueryParameters{
			{},
			{SelectedGroup: ptr("")},
			{SelectedGroup: ptr("team-a")},
			{SelectedGroup: ptr("team-b")},
			{SelectedDate: &date},
			{SelectedDate: &nextDay},
			{SelectedDate: &sameDayLater},
			{SelectedGroup: ptr("team-a"), SelectedDate: &date},
			{SelectedGroup: ptr("team-a"), SelectedDate: &nextDay},
			{SelectedGroup: ptr(""), SelectedDate: &date},
		}

		// when
		keys := make(map[CacheKey]int)
		for i, params := range combinations {
			keys[BuildDashboardRequest(DefaultEndpoint, params).CacheKey] = i
		}

		// then
		assert.Len(t, keys, len(combinations))
	})

	t.Run("should use endpoint as key namespace", func(t *testing.T) {
		a := BuildDashboardRequest("/api/dashboard", QueryParameters{})
		b := BuildDashboardRequest("/api/v2/dashboard", QueryParameters{})
		assert.NotEqual(t, a.CacheKey, b.CacheKey)
	})
}

func TestCacheKey_Params(t *testing.T) {
	// given
	date := time.Date(2023, time.December, 15, 8, 0, 0, 0, time.FixedZone("CET", 60*60))
	params := QueryParameters{SelectedGroup: ptr("team-a"), SelectedDate: &date}
	key := BuildDashboardRequest(DefaultEndpoint, params).CacheKey

	// when
	restored := key.Params()

	// then
	require.NotNil(t, restored.SelectedGroup)
	require.NotNil(t, restored.SelectedDate)
	assert.Equal(t, "team-a", *restored.SelectedGroup)
	assert.True(t, date.Equal(*restored.SelectedDate))
	assert.Equal(t, BuildDashboardRequest(DefaultEndpoint, params), BuildDashboardRequest(DefaultEndpoint, restored))
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2023-12-15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC), date)

	_, err = ParseDate("15.12.2023", time.UTC)
	assert.Error(t, err)
}
