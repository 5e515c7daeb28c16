package taskfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"songforge/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), zerolog.Nop())
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := domain.TaskRecord{TaskID: "abc123", Kind: domain.KindAudio, SavedAt: time.Now().UTC()}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok := store.Load(ctx, domain.KindAudio)
	if !ok {
		t.Fatal("Load reported absent after Save")
	}
	if got.TaskID != "abc123" {
		t.Errorf("TaskID = %q, want abc123", got.TaskID)
	}
	if got.Kind != domain.KindAudio {
		t.Errorf("Kind = %q, want %q", got.Kind, domain.KindAudio)
	}
}

func TestSaveOverwritesSingleSlot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		if err := store.Save(ctx, domain.TaskRecord{TaskID: id, Kind: domain.KindAudio}); err != nil {
			t.Fatalf("Save(%s) failed: %v", id, err)
		}
	}

	got, ok := store.Load(ctx, domain.KindAudio)
	if !ok || got.TaskID != "third" {
		t.Errorf("record = %+v (ok=%t), want the most recent id third", got, ok)
	}
}

func TestKindsUseSeparateSlots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, domain.TaskRecord{TaskID: "audio-1", Kind: domain.KindAudio}); err != nil {
		t.Fatalf("Save audio failed: %v", err)
	}
	if err := store.Save(ctx, domain.TaskRecord{TaskID: "video-1", Kind: domain.KindVideo}); err != nil {
		t.Fatalf("Save video failed: %v", err)
	}

	audio, ok := store.Load(ctx, domain.KindAudio)
	if !ok || audio.TaskID != "audio-1" {
		t.Errorf("audio record = %+v (ok=%t), want audio-1", audio, ok)
	}
	video, ok := store.Load(ctx, domain.KindVideo)
	if !ok || video.TaskID != "video-1" {
		t.Errorf("video record = %+v (ok=%t), want video-1", video, ok)
	}
}

func TestLoadNeverWrittenReturnsAbsent(t *testing.T) {
	store := newTestStore(t)
	if _, ok := store.Load(context.Background(), domain.KindAudio); ok {
		t.Error("Load on an empty store must report absent")
	}
}

func TestLoadTruncatedRecordReturnsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zerolog.Nop())
	ctx := context.Background()

	if err := store.Save(ctx, domain.TaskRecord{TaskID: "abc123", Kind: domain.KindAudio}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Truncate mid-file to simulate a corrupt record.
	path := filepath.Join(dir, "last_audio_task.json")
	if err := os.WriteFile(path, []byte(`{"task_id": "ab`), 0o644); err != nil {
		t.Fatalf("truncate record: %v", err)
	}

	if _, ok := store.Load(ctx, domain.KindAudio); ok {
		t.Error("Load on a corrupt record must report absent, not raise")
	}
}

func TestLoadRecordWithWrongKindReturnsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zerolog.Nop())
	ctx := context.Background()

	// A record whose kind does not match its slot is inconsistent.
	path := filepath.Join(dir, "last_audio_task.json")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"task_id":"abc","kind":"video"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Load(ctx, domain.KindAudio); ok {
		t.Error("Load must reject a record with a mismatched kind")
	}
}

func TestSaveRejectsEmptyTaskID(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(context.Background(), domain.TaskRecord{Kind: domain.KindAudio}); err == nil {
		t.Error("Save must reject an empty task id")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zerolog.Nop())

	if err := store.Save(context.Background(), domain.TaskRecord{TaskID: "abc", Kind: domain.KindAudio}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "last_audio_task.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only last_audio_task.json", names)
	}
}
