package dashboard

import (
	"net/url"
	"strings"
)

// EnvironmentClassifier decides whether a live backend can be expected.
type EnvironmentClassifier interface {
	IsStaticDeployment() bool
}

// OriginClassifier treats only local development hosts as having a backend.
type OriginClassifier struct {
	Origin string
}

func NewOriginClassifier(origin string) *OriginClassifier {
	return &OriginClassifier{Origin: origin}
}

func (c *OriginClassifier) IsStaticDeployment() bool {
	return !isLocalHost(c.Origin)
}

func isLocalHost(origin string) bool {
	origin = strings.TrimSpace(origin)
	host := ""
	if u, err := url.Parse(origin); err == nil {
		host = u.Hostname()
	}
	if host == "" && !strings.Contains(origin, "://") {
		// origins without a scheme, e.g. "localhost:5000"
		if u, err := url.Parse("//" + origin); err == nil {
			host = u.Hostname()
		}
	}
	host = strings.ToLower(host)
	return host == "localhost" || host == "127.0.0.1"
}

// StaticClassifier always gives the same answer. Used for forced modes.
type StaticClassifier bool

func (c StaticClassifier) IsStaticDeployment() bool {
	return bool(c)
}
