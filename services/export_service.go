package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/services/storage"
)

// ExportRowLimit caps rows per table in an export.
const ExportRowLimit = 10000

// ExportResult describes an uploaded database export
type ExportResult struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Size        int       `json:"size"`
	Tables      int       `json:"tables"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ExportService snapshots the database and stores it as JSON in object storage
type ExportService struct {
	store   database.Storage
	objects storage.ObjectStore
}

// NewExportService returns nil when objects is nil, so callers can treat a
// missing export service as "storage not configured".
func NewExportService(store database.Storage, objects storage.ObjectStore) *ExportService {
	if objects == nil {
		return nil
	}
	return &ExportService{store: store, objects: objects}
}

// Export uploads a snapshot and returns a presigned download link.
func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	db, err := s.store.Conn()
	if err != nil {
		return nil, err
	}

	snap, err := database.TakeSnapshot(ctx, db, ExportRowLimit)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := storage.GenerateKey("exports", fmt.Sprintf("%s.json", snap.Database.Name), snap.GeneratedAt)
	if err := s.objects.UploadBytes(ctx, key, body, "application/json"); err != nil {
		return nil, err
	}

	url, err := s.objects.PresignedURL(key, time.Hour)
	if err != nil {
		return nil, err
	}

	log.Info().Str("key", key).Int("bytes", len(body)).Msg("database export uploaded")
	return &ExportResult{
		Key:         key,
		URL:         url,
		Size:        len(body),
		Tables:      len(snap.Data),
		GeneratedAt: snap.GeneratedAt,
	}, nil
}
