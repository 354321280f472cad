package app

import (
	"context"
	"errors"
	"testing"

	"examforge/internal/model"
)

type fakeIngestStore struct {
	created     []model.RawMaterial
	unprocessed []model.RawMaterial
	createErr   error
}

func (f *fakeIngestStore) Create(m *model.RawMaterial) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *m)
	return nil
}

func (f *fakeIngestStore) ListUnprocessed(_ int) ([]model.RawMaterial, error) {
	return f.unprocessed, nil
}

type fakeDispatcher struct {
	dispatched []string
	err        error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, materialID, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, materialID)
	return nil
}

func TestIngest_StoresAndDispatches(t *testing.T) {
	store := &fakeIngestStore{}
	dispatcher := &fakeDispatcher{}
	svc := NewIngestService(store, dispatcher)

	material, err := svc.Ingest(context.Background(), IngestInput{
		URL:        "https://example.com/a",
		SourceType: "note",
		Content:    "The sky is blue.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if material.ID == "" {
		t.Fatal("expected a material id")
	}
	if material.Processed {
		t.Error("new material must start unprocessed")
	}
	if len(store.created) != 1 || store.created[0].SourceType != "note" {
		t.Errorf("unexpected stored material: %+v", store.created)
	}
	if len(dispatcher.dispatched) != 1 || dispatcher.dispatched[0] != material.ID {
		t.Errorf("expected one dispatch for %s, got %v", material.ID, dispatcher.dispatched)
	}
}

func TestIngest_EmptyContent(t *testing.T) {
	svc := NewIngestService(&fakeIngestStore{}, &fakeDispatcher{})

	if _, err := svc.Ingest(context.Background(), IngestInput{Content: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngest_DispatchFailureKeepsMaterial(t *testing.T) {
	store := &fakeIngestStore{}
	svc := NewIngestService(store, &fakeDispatcher{err: errors.New("broker down")})

	_, err := svc.Ingest(context.Background(), IngestInput{SourceType: "article", Content: "text"})
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
	if len(store.created) != 1 {
		t.Errorf("material must stay persisted for a later reprocess run")
	}
}

func TestReprocessPending_DispatchesEachMaterial(t *testing.T) {
	store := &fakeIngestStore{unprocessed: []model.RawMaterial{
		{ID: "m1", Content: "a"},
		{ID: "m2", Content: "b"},
	}}
	dispatcher := &fakeDispatcher{}
	svc := NewIngestService(store, dispatcher)

	n, err := svc.ReprocessPending(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(dispatcher.dispatched) != 2 {
		t.Errorf("expected 2 dispatches, got n=%d dispatched=%v", n, dispatcher.dispatched)
	}
}
