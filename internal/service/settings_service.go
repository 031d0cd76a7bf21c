package service

import (
	"context"
	"errors"
	"sync"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
)

// SettingsService is a read-through cache over the global_settings singleton.
// Initialized once at startup; handlers never do ad hoc find-or-create.
type SettingsService struct {
	Repo repository.SettingsRepository

	mu     sync.RWMutex
	cached *domain.GlobalSettings
}

// Init ensures the singleton row exists (creating it from the configured
// default on first run) and primes the cache.
func (s *SettingsService) Init(ctx context.Context, defaultDomain string) error {
	current, err := s.Repo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		current, err = s.Repo.Save(ctx, domain.GlobalSettings{DefaultDomain: defaultDomain})
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cached = current
	s.mu.Unlock()
	return nil
}

func (s *SettingsService) Get(ctx context.Context) (domain.GlobalSettings, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}
	current, err := s.Repo.Get(ctx)
	if err != nil {
		return domain.GlobalSettings{}, err
	}
	s.mu.Lock()
	s.cached = current
	s.mu.Unlock()
	return *current, nil
}

func (s *SettingsService) Save(ctx context.Context, in domain.GlobalSettings) (domain.GlobalSettings, error) {
	saved, err := s.Repo.Save(ctx, in)
	if err != nil {
		return domain.GlobalSettings{}, err
	}
	s.mu.Lock()
	s.cached = saved
	s.mu.Unlock()
	return *saved, nil
}
