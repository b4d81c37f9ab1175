package store

import (
	"time"

	"github.com/hrygo/spotmatch/internal/profile"
	"github.com/hrygo/spotmatch/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// negotiationContextCache caches the per-user active proposal pointer.
	// The store remains the source of truth; entries are short-lived.
	negotiationContextCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:                  driver,
		profile:                 profile,
		cacheConfig:             cacheConfig,
		negotiationContextCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.negotiationContextCache.Close()
	return s.driver.Close()
}
