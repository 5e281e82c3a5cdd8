package library

import (
	"os"
	"path/filepath"
	"testing"

	"photomirror/internal/model"
)

func TestStashThenRetrieveArchivedAlbum(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	album := &model.Album{UUID: "archived-1", Kind: model.KindArchived, DisplayName: "Old Memories"}
	if err := store.WriteAlbum(album, nil); err != nil {
		t.Fatalf("WriteAlbum: %v", err)
	}
	_, uuidPath, err := store.findAlbumPaths(album)
	if err != nil {
		t.Fatalf("findAlbumPaths: %v", err)
	}
	if err := os.WriteFile(filepath.Join(uuidPath, "user-photo.jpg"), []byte("mine"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := store.StashArchivedAlbum(album); err != nil {
		t.Fatalf("StashArchivedAlbum: %v", err)
	}

	loaded, err := store.LoadAlbums()
	if err != nil {
		t.Fatalf("LoadAlbums: %v", err)
	}
	if _, ok := loaded["archived-1"]; ok {
		t.Fatalf("expected stashed album to be absent from the main tree")
	}

	if err := store.RetrieveStashedAlbum(album); err != nil {
		t.Fatalf("RetrieveStashedAlbum: %v", err)
	}

	loaded, err = store.LoadAlbums()
	if err != nil {
		t.Fatalf("LoadAlbums after retrieve: %v", err)
	}
	got, ok := loaded["archived-1"]
	if !ok || got.Kind != model.KindArchived {
		t.Fatalf("expected retrieved archived album, got %+v", got)
	}
}

func TestCleanArchivedOrphansPromotesStash(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	album := &model.Album{UUID: "archived-1", Kind: model.KindArchived, DisplayName: "Forgotten"}
	if err := store.WriteAlbum(album, nil); err != nil {
		t.Fatalf("WriteAlbum: %v", err)
	}
	if err := store.StashArchivedAlbum(album); err != nil {
		t.Fatalf("StashArchivedAlbum: %v", err)
	}

	if err := store.CleanArchivedOrphans(); err != nil {
		t.Fatalf("CleanArchivedOrphans: %v", err)
	}

	entries, err := os.ReadDir(store.ArchiveDir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Name() == "Forgotten" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Forgotten to be promoted into the archive directory, got %v", entries)
	}
}

func TestUniqueArchiveNameAvoidsCollisions(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	first, err := store.uniqueArchiveName("Trip")
	if err != nil {
		t.Fatalf("uniqueArchiveName: %v", err)
	}
	if err := os.MkdirAll(first, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	second, err := store.uniqueArchiveName("Trip")
	if err != nil {
		t.Fatalf("uniqueArchiveName: %v", err)
	}
	if second == first {
		t.Fatalf("expected a distinct collision-avoiding name, got %q twice", first)
	}
}
