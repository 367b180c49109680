package geocode

import (
	"context"
	"errors"
	"sync"
	"time"
	"trip-weather-service/internal/domain"
)

// MockGeocoder resolves coordinates from a fixed table keyed by
// Coordinates.Key(4) and records when each request was issued.
type MockGeocoder struct {
	Addresses map[string]domain.Address
	Err       error

	mu       sync.Mutex
	issuedAt []time.Time
}

func NewMockGeocoder(addresses map[string]domain.Address) *MockGeocoder {
	if addresses == nil {
		addresses = map[string]domain.Address{}
	}
	return &MockGeocoder{Addresses: addresses}
}

func (m *MockGeocoder) Reverse(ctx context.Context, at domain.Coordinates) (domain.Address, error) {
	m.mu.Lock()
	m.issuedAt = append(m.issuedAt, time.Now())
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Address{}, err
	}
	if m.Err != nil {
		return domain.Address{}, m.Err
	}

	a, ok := m.Addresses[at.Key(4)]
	if !ok {
		return domain.Address{}, errors.New("mock geocoder: no address")
	}
	return a, nil
}

func (m *MockGeocoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.issuedAt)
}

// IssuedAt returns request times in the order they arrived.
func (m *MockGeocoder) IssuedAt() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.issuedAt))
	copy(out, m.issuedAt)
	return out
}
