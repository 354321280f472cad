package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"examforge/internal/model"
)

var ErrDispatchFailed = errors.New("dispatch extraction task failed")

type MaterialIngestStore interface {
	Create(material *model.RawMaterial) error
	ListUnprocessed(limit int) ([]model.RawMaterial, error)
}

// TaskDispatcher hands a material off for background extraction. The queue
// implementation lives behind this seam.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, materialID, content string) error
}

// IngestService is the intake boundary's only collaborator: it stores the raw
// record and queues the extraction. It only ever acknowledges receipt; the
// outcome of extraction is observable through the processed flag alone.
type IngestService struct {
	materials  MaterialIngestStore
	dispatcher TaskDispatcher
}

func NewIngestService(materials MaterialIngestStore, dispatcher TaskDispatcher) *IngestService {
	return &IngestService{materials: materials, dispatcher: dispatcher}
}

type IngestInput struct {
	URL        string
	SourceType string
	Content    string
}

func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*model.RawMaterial, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrInvalidInput
	}
	sourceType := strings.TrimSpace(input.SourceType)
	if sourceType == "" {
		sourceType = "article"
	}

	material := &model.RawMaterial{
		ID:         uuid.NewString(),
		URL:        strings.TrimSpace(input.URL),
		SourceType: sourceType,
		Content:    content,
	}
	if err := s.materials.Create(material); err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, material.ID, material.Content); err != nil {
		// The material row stays; a reprocess run will pick it up.
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return material, nil
}

// ReprocessPending re-queues every material whose extraction never committed.
// Returns the number of materials dispatched.
func (s *IngestService) ReprocessPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.materials.ListUnprocessed(limit)
	if err != nil {
		return 0, err
	}
	dispatched := 0
	for _, material := range pending {
		if err := s.dispatcher.Dispatch(ctx, material.ID, material.Content); err != nil {
			return dispatched, fmt.Errorf("%w: material %s: %v", ErrDispatchFailed, material.ID, err)
		}
		dispatched++
	}
	return dispatched, nil
}
