package dashboard

import (
	"context"
	"sync"
)

type FetcherStub struct {
	mu   sync.RWMutex
	data map[string]DashboardData // url -> data
	err  error
	urls []string
}

func NewFetcherStub() *FetcherStub {
	return &FetcherStub{
		data: make(map[string]DashboardData),
	}
}

func (f *FetcherStub) Fetch(ctx context.Context, url string) (DashboardData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)

	if f.err != nil {
		return DashboardData{}, f.err
	}
	data, exists := f.data[url]
	if !exists {
		return DashboardData{}, &HttpStatusError{URL: url, Status: 404}
	}
	return data.Clone(), nil
}

// Helper methods for test setup

func (f *FetcherStub) SetData(url string, data DashboardData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[url] = data.Clone()
}

func (f *FetcherStub) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FetcherStub) RequestedURLs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]string, len(f.urls))
	copy(result, f.urls)
	return result
}

func (f *FetcherStub) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = make(map[string]DashboardData)
	f.err = nil
	f.urls = nil
}
