package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nena/internal/models"
	"nena/internal/providers"
	"nena/internal/store"

	json "github.com/goccy/go-json"
)

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// FileManager writes and reads zstd-compressed JSON snapshots of an
// in-memory store.
type FileManager struct {
	target     store.Snapshotter
	compressor Compressor
	logger     providers.Logger
}

func NewFileManager(compressor Compressor, target store.Snapshotter, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		target:     target,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snap := f.target.Snapshot()

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the store from fileName. A missing file is not an
// error. Uncompressed snapshots written by hand or by older builds are
// accepted with a warning.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	payload, err := f.compressor.Decompress(data)
	if err != nil {
		if !json.Valid(data) {
			return fmt.Errorf("decompress snapshot: %w", err)
		}
		f.logger.Warnf(providers.TypeApp, "Snapshot %s is not compressed, reading as plain JSON", fileName)
		payload = data
	}

	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != models.SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}

	f.target.Restore(&snap)
	f.logger.Infof(providers.TypeApp, "Restored %d users and %d badges from %s", len(snap.Analytics), len(snap.Badges), fileName)
	return nil
}
