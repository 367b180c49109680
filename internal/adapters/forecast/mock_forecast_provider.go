package forecast

import (
	"context"
	"fmt"
	"sync"
	"trip-weather-service/internal/domain"
)

// MockForecastProvider answers every coordinate with the same forecast,
// except coordinates listed in Fail.
type MockForecastProvider struct {
	Default domain.Forecast
	ByKey   map[string]domain.Forecast
	Fail    map[string]error

	mu    sync.Mutex
	calls []domain.Coordinates
}

func NewMockForecastProvider(def domain.Forecast) *MockForecastProvider {
	return &MockForecastProvider{
		Default: def,
		ByKey:   map[string]domain.Forecast{},
		Fail:    map[string]error{},
	}
}

// MockKey is the key used by ByKey and Fail.
func MockKey(c domain.Coordinates) string { return c.Key(4) }

func (m *MockForecastProvider) Forecast(ctx context.Context, at domain.Coordinates) (domain.Forecast, error) {
	m.mu.Lock()
	m.calls = append(m.calls, at)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Forecast{}, err
	}

	key := MockKey(at)
	if err, ok := m.Fail[key]; ok {
		return domain.Forecast{}, fmt.Errorf("mock forecast %s: %w", key, err)
	}
	if f, ok := m.ByKey[key]; ok {
		return f, nil
	}
	return m.Default, nil
}

func (m *MockForecastProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
