package store

import (
	"fmt"

	"nena/internal/providers"
	"nena/internal/structures"
)

// NewRecordStore opens the backend selected by database.driver.
func NewRecordStore(conf *structures.Config, logger providers.Logger) (RecordStore, error) {
	switch conf.Database.Driver {
	case "", "memory":
		logger.Infof(providers.TypeApp, "Using in-memory record store")
		return NewMemoryStore(), nil
	case "postgres", "sqlite":
		db, err := OpenGorm(conf.Database.Driver, conf.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", conf.Database.Driver, err)
		}
		s, err := NewGormStore(db)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeApp, "Using %s record store", conf.Database.Driver)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Database.Driver)
	}
}

// AsSnapshotter returns the store's snapshot capability, or nil when the
// backend persists on its own.
func AsSnapshotter(s RecordStore) Snapshotter {
	if sn, ok := s.(Snapshotter); ok {
		return sn
	}
	return nil
}
