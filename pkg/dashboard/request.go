package dashboard

import (
	"net/url"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "/api/dashboard"
	dateLayout      = "2006-01-02"
)

// CacheKey identifies one dashboard query. An absent group and an empty group
// are different keys, as are two different instants on the same day.
type CacheKey struct {
	Endpoint string
	Group    string
	HasGroup bool
	Date     string // RFC3339Nano
	HasDate  bool
}

type Request struct {
	CacheKey CacheKey
	URL      string
}

// BuildDashboardRequest turns the optional filters into a cache key and the
// request URL. The URL carries group before date and has no "?" when there's
// nothing to filter on.
func BuildDashboardRequest(endpoint string, params QueryParameters) Request {
	key := CacheKey{Endpoint: endpoint}

	var query []string
	if params.SelectedGroup != nil {
		key.Group = *params.SelectedGroup
		key.HasGroup = true
		if key.Group != "" {
			query = append(query, "group="+url.QueryEscape(key.Group))
		}
	}
	if params.SelectedDate != nil {
		key.Date = params.SelectedDate.Format(time.RFC3339Nano)
		key.HasDate = true
		query = append(query, "date="+params.SelectedDate.Format(dateLayout))
	}

	requestURL := endpoint
	if len(query) > 0 {
		requestURL += "?" + strings.Join(query, "&")
	}
	return Request{CacheKey: key, URL: requestURL}
}

// ParseDate parses the YYYY-MM-DD form used on the wire.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateLayout, value, loc)
}
