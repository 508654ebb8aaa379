package catalog

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/pricing"
)

// Snapshot represents the latest directory data available to the UI.
type Snapshot struct {
	Cleaners            []api.Cleaner
	Services            map[string][]api.Service
	Pricing             pricing.Config
	HasPricing          bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// PricingOrDefault returns the fetched pricing, or the built-in defaults
// before the first successful fetch.
func (s Snapshot) PricingOrDefault() pricing.Config {
	if s.HasPricing {
		return s.Pricing
	}
	return pricing.Default()
}

// Cleaner looks up a cleaner by id.
func (s Snapshot) Cleaner(id string) (api.Cleaner, bool) {
	idx := slices.IndexFunc(s.Cleaners, func(c api.Cleaner) bool { return c.ID == id })
	if idx < 0 {
		return api.Cleaner{}, false
	}
	return s.Cleaners[idx], true
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the directory listing. When err is non-nil the previous data
// is kept but the error is recorded for visibility. A nil cfg keeps the
// previously fetched pricing.
func (s *Store) Update(cleaners []api.Cleaner, cfg *pricing.Config, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Cleaners = slices.Clone(cleaners)
	if cfg != nil {
		s.snapshot.Pricing = *cfg
		s.snapshot.HasPricing = true
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// SetServices caches the service listing of one cleaner.
func (s *Store) SetServices(cleanerID string, services []api.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Services == nil {
		s.snapshot.Services = make(map[string][]api.Service)
	}
	s.snapshot.Services[cleanerID] = cloneServices(services)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Cleaners = slices.Clone(s.snapshot.Cleaners)
	if s.snapshot.Services != nil {
		snap.Services = make(map[string][]api.Service, len(s.snapshot.Services))
		for id, list := range s.snapshot.Services {
			snap.Services[id] = cloneServices(list)
		}
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneServices(services []api.Service) []api.Service {
	if len(services) == 0 {
		return nil
	}
	dup := make([]api.Service, len(services))
	for i, svc := range services {
		dup[i] = svc
		dup[i].Options = slices.Clone(svc.Options)
	}
	return dup
}

// Categories returns the distinct service categories in first-seen order.
func Categories(services []api.Service) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, svc := range services {
		if _, ok := seen[svc.Category]; ok {
			continue
		}
		seen[svc.Category] = struct{}{}
		out = append(out, svc.Category)
	}
	return out
}

// ByCategory filters services to one category; empty returns all.
func ByCategory(services []api.Service, category string) []api.Service {
	if category == "" {
		return services
	}
	return slices.DeleteFunc(slices.Clone(services), func(svc api.Service) bool {
		return svc.Category != category
	})
}
