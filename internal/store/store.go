// Package store persists catalog artifacts as JSON files. Every write goes
// through an atomic rename, so a crashed run never leaves a partial artifact.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/natefinch/atomic"

	"github.com/davidbz/freeloader/internal/domain"
	"github.com/davidbz/freeloader/internal/observability"
)

const (
	baselineFile = "known_free_models.json"
	changesFile  = "model_changes.json"
	layerFile    = "model_layer.json"
	snapshotsDir = "daily_snapshots"
)

// FileStore implements domain.ArtifactStore on the local filesystem.
type FileStore struct {
	dataDir string
}

// NewFileStore creates a file-backed artifact store rooted at the configured
// data directory.
func NewFileStore(config Config) *FileStore {
	return &FileStore{dataDir: config.DataDir}
}

func (s *FileStore) baselinePath() string { return filepath.Join(s.dataDir, baselineFile) }
func (s *FileStore) changesPath() string  { return filepath.Join(s.dataDir, changesFile) }
func (s *FileStore) layerPath() string    { return filepath.Join(s.dataDir, layerFile) }

func (s *FileStore) snapshotPath(date string) string {
	return filepath.Join(s.dataDir, snapshotsDir, date+".json")
}

// LoadBaseline returns the previously saved free set baseline. A missing file
// yields an empty baseline, an unparseable one is an error, and parseable
// content with an unexpected shape starts fresh with a warning.
func (s *FileStore) LoadBaseline(ctx context.Context) (domain.Baseline, error) {
	logger := observability.FromContext(ctx)

	data, err := os.ReadFile(s.baselinePath())
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no baseline file, assuming first run")
			return domain.Baseline{}, nil
		}
		return domain.Baseline{}, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var baseline domain.Baseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		if !json.Valid(data) {
			return domain.Baseline{}, fmt.Errorf("failed to parse baseline file: %w", err)
		}
		logger.Warn("baseline file has unexpected shape, starting fresh",
			observability.Error(err))
		return domain.Baseline{}, nil
	}

	return baseline, nil
}

// SaveBaseline replaces the free set baseline.
func (s *FileStore) SaveBaseline(ctx context.Context, baseline domain.Baseline) error {
	logger := observability.FromContext(ctx)

	if err := s.writeJSON(s.baselinePath(), baseline); err != nil {
		return fmt.Errorf("failed to save baseline: %w", err)
	}

	logger.Info("baseline saved",
		observability.Int("models", baseline.ModelCount))
	return nil
}

// WriteChanges replaces the change record of the latest run.
func (s *FileStore) WriteChanges(ctx context.Context, changes domain.ChangeRecord) error {
	logger := observability.FromContext(ctx)

	if err := s.writeJSON(s.changesPath(), changes); err != nil {
		return fmt.Errorf("failed to write change record: %w", err)
	}

	logger.Info("change record written",
		observability.Int("added", len(changes.Added)),
		observability.Int("removed", len(changes.Removed)))
	return nil
}

// RecordSnapshot writes the date-keyed snapshot. When a snapshot with the
// same date and identical content already exists the write is skipped; a
// same-date snapshot with different content is overwritten. Returns whether
// a write happened.
func (s *FileStore) RecordSnapshot(ctx context.Context, snapshot domain.Snapshot) (bool, error) {
	logger := observability.FromContext(ctx)

	path := s.snapshotPath(snapshot.DateUTC)

	candidate, err := marshalArtifact(snapshot)
	if err != nil {
		return false, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read existing snapshot: %w", err)
	}
	if err == nil && jsonEqual(existing, candidate) {
		logger.Info("snapshot unchanged, skipping write",
			observability.String("date", snapshot.DateUTC))
		return false, nil
	}

	if err := s.writeBytes(path, candidate); err != nil {
		return false, fmt.Errorf("failed to record snapshot: %w", err)
	}

	logger.Info("snapshot recorded",
		observability.String("date", snapshot.DateUTC),
		observability.Int("models", snapshot.TotalFreeModels))
	return true, nil
}

// PublishLayer writes the consumer-facing model layer. The layer schema is
// verified before anything touches disk, and an existing layer that fails
// verification is never overwritten. An existing layer with identical content
// apart from updated_at skips the write. Returns whether a write happened.
func (s *FileStore) PublishLayer(ctx context.Context, layer domain.ModelLayer) (bool, error) {
	logger := observability.FromContext(ctx)

	candidate, err := marshalArtifact(layer)
	if err != nil {
		return false, fmt.Errorf("failed to encode model layer: %w", err)
	}
	if err := verifyLayerSchema(candidate); err != nil {
		return false, err
	}

	existing, readErr := os.ReadFile(s.layerPath())
	if readErr != nil && !os.IsNotExist(readErr) {
		return false, fmt.Errorf("failed to read existing model layer: %w", readErr)
	}

	if readErr == nil {
		if err := verifyLayerSchema(existing); err != nil {
			return false, fmt.Errorf("existing model layer rejected: %w", err)
		}
		if layersEqual(existing, candidate) {
			logger.Info("model layer unchanged, skipping write")
			return false, nil
		}
	}

	layer.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	stamped, err := marshalArtifact(layer)
	if err != nil {
		return false, fmt.Errorf("failed to encode model layer: %w", err)
	}

	if err := s.writeBytes(s.layerPath(), stamped); err != nil {
		return false, fmt.Errorf("failed to publish model layer: %w", err)
	}

	logger.Info("model layer published",
		observability.Int("models", layer.Stats.FreeModelCount),
		observability.Int("profiles", layer.Stats.ProfileCount))
	return true, nil
}

// ReadLayer returns the raw published model layer.
func (s *FileStore) ReadLayer(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.layerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrLayerNotFound
		}
		return nil, fmt.Errorf("failed to read model layer: %w", err)
	}
	return data, nil
}

func (s *FileStore) writeJSON(path string, v any) error {
	data, err := marshalArtifact(v)
	if err != nil {
		return err
	}
	return s.writeBytes(path, data)
}

func (s *FileStore) writeBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func marshalArtifact(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// jsonEqual compares two JSON documents by content rather than bytes.
func jsonEqual(a, b []byte) bool {
	var left, right any
	if decodeAny(a, &left) != nil || decodeAny(b, &right) != nil {
		return false
	}
	return reflect.DeepEqual(left, right)
}

// layersEqual compares two serialized model layers ignoring updated_at.
func layersEqual(a, b []byte) bool {
	var left, right map[string]any
	if decodeAny(a, &left) != nil || decodeAny(b, &right) != nil {
		return false
	}
	delete(left, "updated_at")
	delete(right, "updated_at")
	return reflect.DeepEqual(left, right)
}

func decodeAny(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(v)
}
