package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sceneforge/rigkit/pkg/rig"
	"github.com/sceneforge/rigkit/pkg/scene"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	storage := NewRedisStorage(mr.Addr(), t.TempDir(), logger)
	t.Cleanup(func() {
		if err := storage.Close(); err != nil {
			t.Errorf("Failed to close storage: %v", err)
		}
	})

	return storage, mr
}

func testTemplate(name, filename string) *scene.Template {
	root := &scene.Node{Name: name}
	root.AttachCapability(scene.NewCapability(scene.KindGrabbable))
	root.Normalize()
	return &scene.Template{Name: name, FileName: filename, Root: root}
}

func TestRedisStorage_Ping(t *testing.T) {
	storage, _ := setupTestStorage(t)

	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("Expected ping to succeed: %v", err)
	}
}

func TestRedisStorage_SaveAndGetTemplate(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	tpl := testTemplate("Crate", "crate.json")
	if err := storage.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("Failed to save template: %v", err)
	}

	loaded, err := storage.GetTemplate(ctx, "crate.json")
	if err != nil {
		t.Fatalf("Failed to load template: %v", err)
	}
	if loaded.Name != "Crate" {
		t.Errorf("Expected name 'Crate', got %q", loaded.Name)
	}
	if loaded.FileName != "crate.json" {
		t.Errorf("Expected file name to be set on load, got %q", loaded.FileName)
	}
	if loaded.Root.ID != tpl.Root.ID {
		t.Error("Expected node identity to survive persistence")
	}
	if !loaded.Root.HasCapability(scene.KindGrabbable) {
		t.Error("Expected capabilities to survive persistence")
	}
}

func TestRedisStorage_GetTemplate_NotFound(t *testing.T) {
	storage, _ := setupTestStorage(t)

	_, err := storage.GetTemplate(context.Background(), "ghost.json")
	if err == nil {
		t.Fatal("Expected an error for a missing template")
	}
}

func TestRedisStorage_SaveTemplate_RequiresFileName(t *testing.T) {
	storage, _ := setupTestStorage(t)

	tpl := testTemplate("Nameless", "")
	if err := storage.SaveTemplate(context.Background(), tpl); err == nil {
		t.Fatal("Expected an error for a template without a file name")
	}
}

func TestRedisStorage_SaveTemplate_ReplacesWhole(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	tpl := testTemplate("Crate", "crate.json")
	if err := storage.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	tpl.Root.AddChild(&scene.Node{Name: "Lid"})
	tpl.Normalize()
	if err := storage.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("Failed to re-save: %v", err)
	}

	loaded, err := storage.GetTemplate(ctx, "crate.json")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded.Root.FindByName("Lid") == nil {
		t.Error("Expected the second save to replace the stored template")
	}

	// No temp files may be left behind by the atomic write.
	entries, err := os.ReadDir(filepath.Join(storage.dataDir, "templates"))
	if err != nil {
		t.Fatalf("Failed to read templates dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly one file in templates dir, got %d", len(entries))
	}
}

func TestRedisStorage_ListTemplates(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	if err := storage.SaveTemplate(ctx, testTemplate("Crate", "crate.json")); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := storage.SaveTemplate(ctx, testTemplate("Training Dummy", "dummy.json")); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	templates, err := storage.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("Failed to list templates: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("Expected 2 templates, got %d", len(templates))
	}
	if templates["Crate"] != "crate.json" {
		t.Errorf("Expected Crate -> crate.json, got %q", templates["Crate"])
	}
	if templates["Training Dummy"] != "dummy.json" {
		t.Errorf("Expected Training Dummy -> dummy.json, got %q", templates["Training Dummy"])
	}
}

func TestRedisStorage_ListTemplates_EmptyDir(t *testing.T) {
	storage, _ := setupTestStorage(t)

	templates, err := storage.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("Expected an empty result for a missing dir, got error: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("Expected no templates, got %d", len(templates))
	}
}

func TestRedisStorage_EditSessionRoundTrip(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	root := &scene.Node{Name: "Crate"}
	root.Normalize()

	log := rig.NewEditLog()
	log.SetBaseline(root)
	log.AddCapability(root, scene.NewCapability(scene.KindStandardInteractable))

	if err := storage.SaveEditSession(ctx, log); err != nil {
		t.Fatalf("Failed to save edit session: %v", err)
	}

	loaded, err := storage.GetEditSession(ctx, log.RunID)
	if err != nil {
		t.Fatalf("Failed to load edit session: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected a stored edit session")
	}
	if loaded.RunID != log.RunID {
		t.Errorf("Expected run ID %q, got %q", log.RunID, loaded.RunID)
	}
	if loaded.Len() != 1 {
		t.Errorf("Expected 1 edit, got %d", loaded.Len())
	}
	if loaded.Baseline == nil || loaded.Baseline.Name != "Crate" {
		t.Error("Expected the baseline snapshot to survive persistence")
	}

	// The rehydrated log must still undo the run.
	loaded.Revert(root)
	if root.HasCapability(scene.KindStandardInteractable) {
		t.Error("Expected the rehydrated session to undo the edit")
	}
}

func TestRedisStorage_GetEditSession_Missing(t *testing.T) {
	storage, _ := setupTestStorage(t)

	loaded, err := storage.GetEditSession(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("Expected no error for a missing session, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for a missing session")
	}
}

func TestRedisStorage_DeleteEditSession(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	log := rig.NewEditLog()
	if err := storage.SaveEditSession(ctx, log); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := storage.DeleteEditSession(ctx, log.RunID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	loaded, err := storage.GetEditSession(ctx, log.RunID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded != nil {
		t.Error("Expected the session to be gone")
	}
}

func TestRedisStorage_EditSessionExpires(t *testing.T) {
	storage, mr := setupTestStorage(t)
	ctx := context.Background()

	log := rig.NewEditLog()
	if err := storage.SaveEditSession(ctx, log); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	mr.FastForward(editSessionTTL + time.Second)

	loaded, err := storage.GetEditSession(ctx, log.RunID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded != nil {
		t.Error("Expected the session to expire")
	}
}
