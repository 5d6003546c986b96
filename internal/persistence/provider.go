package persistence

import (
	"nena/internal/providers"
	"nena/internal/store"
)

// NewSnapshotFileManager returns a file manager for stores that keep their
// state in memory, and nil for stores backed by a database.
func NewSnapshotFileManager(rs store.RecordStore, compressor Compressor, logger providers.Logger) *FileManager {
	target := store.AsSnapshotter(rs)
	if target == nil {
		logger.Infof(providers.TypeApp, "Snapshots disabled: store persists on its own")
		return nil
	}
	return NewFileManager(compressor, target, logger)
}
