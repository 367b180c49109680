package routing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"trip-weather-service/internal/domain"
)

// MockRouteProvider returns canned candidates. Block, when set, is waited on
// before answering so tests can hold a request in flight.
type MockRouteProvider struct {
	Candidates []domain.RouteCandidate
	Err        error
	Block      chan struct{}

	mu    sync.Mutex
	calls int
}

func NewMockRouteProvider(candidates ...domain.RouteCandidate) *MockRouteProvider {
	return &MockRouteProvider{Candidates: candidates}
}

func (m *MockRouteProvider) Routes(ctx context.Context, origin, destination domain.Coordinates, alternatives int) ([]domain.RouteCandidate, error) {
	m.mu.Lock()
	m.calls++
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-block:
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}

	out := m.Candidates
	if alternatives > 0 && len(out) > alternatives {
		out = out[:alternatives]
	}
	return out, nil
}

func (m *MockRouteProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockPlaceSearcher resolves queries from a fixed table, case-insensitively.
type MockPlaceSearcher struct {
	Places map[string]domain.Coordinates
}

func (m *MockPlaceSearcher) Search(ctx context.Context, text string) (domain.Coordinates, error) {
	if c, ok := m.Places[strings.ToLower(strings.TrimSpace(text))]; ok {
		return c, nil
	}
	return domain.Coordinates{}, fmt.Errorf("mock search: %w: no results for %q", domain.ErrInvalidInput, text)
}
