package library

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"photomirror/internal/model"
)

func TestWriteAlbumThenLoadAlbums(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	data := []byte("photo")
	asset := newAsset("a1", "jpg", data)
	if err := store.WriteAsset(asset, bytes.NewReader(data)); err != nil {
		t.Fatalf("WriteAsset: %v", err)
	}

	album := &model.Album{
		UUID:        "album-1",
		Kind:        model.KindAlbum,
		DisplayName: "Vacation",
		Assets:      map[string]string{"a1": "a1.jpg"},
	}
	assets := map[string]*model.Asset{"a1": asset}

	if err := store.WriteAlbum(album, assets); err != nil {
		t.Fatalf("WriteAlbum: %v", err)
	}

	loaded, err := store.LoadAlbums()
	if err != nil {
		t.Fatalf("LoadAlbums: %v", err)
	}
	got, ok := loaded["album-1"]
	if !ok {
		t.Fatalf("expected album-1 to be loaded, got %v", loaded)
	}
	if got.DisplayName != "Vacation" || got.Kind != model.KindAlbum {
		t.Fatalf("loaded album mismatch: %+v", got)
	}
	if _, ok := got.Assets["a1"]; !ok {
		t.Fatalf("expected asset link a1 to survive load, got %v", got.Assets)
	}
}

func TestWriteAlbumFailsIfAlreadyExists(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	album := &model.Album{UUID: "album-1", Kind: model.KindAlbum, DisplayName: "Trip"}
	if err := store.WriteAlbum(album, nil); err != nil {
		t.Fatalf("WriteAlbum: %v", err)
	}
	if err := store.WriteAlbum(album, nil); err == nil {
		t.Fatalf("expected second WriteAlbum to fail with ErrAlreadyExists")
	}
}

func TestFolderNestsAlbums(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	folder := &model.Album{UUID: "folder-1", Kind: model.KindFolder, DisplayName: "2024"}
	if err := store.WriteAlbum(folder, nil); err != nil {
		t.Fatalf("WriteAlbum folder: %v", err)
	}

	child := &model.Album{UUID: "album-2", Kind: model.KindAlbum, DisplayName: "Spring", ParentUUID: "folder-1"}
	if err := store.WriteAlbum(child, nil); err != nil {
		t.Fatalf("WriteAlbum child: %v", err)
	}

	loaded, err := store.LoadAlbums()
	if err != nil {
		t.Fatalf("LoadAlbums: %v", err)
	}
	got, ok := loaded["album-2"]
	if !ok || got.ParentUUID != "folder-1" {
		t.Fatalf("expected album-2 nested under folder-1, got %+v", got)
	}
}

func TestDeleteAlbumRejectsNonEmpty(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	album := &model.Album{UUID: "album-1", Kind: model.KindAlbum, DisplayName: "Trip"}
	if err := store.WriteAlbum(album, nil); err != nil {
		t.Fatalf("WriteAlbum: %v", err)
	}

	_, uuidPath, err := store.findAlbumPaths(album)
	if err != nil {
		t.Fatalf("findAlbumPaths: %v", err)
	}
	if err := os.WriteFile(filepath.Join(uuidPath, "user-placed.txt"), []byte("mine"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := store.DeleteAlbum(album); err == nil {
		t.Fatalf("expected DeleteAlbum to reject a non-empty directory")
	}
}

func TestRenameAlbumSwapsNameInPlace(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	oldAlbum := &model.Album{UUID: "album-1", Kind: model.KindAlbum, DisplayName: "Old Name"}
	if err := store.WriteAlbum(oldAlbum, nil); err != nil {
		t.Fatalf("WriteAlbum: %v", err)
	}

	newAlbum := &model.Album{UUID: "album-1", Kind: model.KindAlbum, DisplayName: "New Name"}
	if err := store.RenameAlbum(oldAlbum, newAlbum); err != nil {
		t.Fatalf("RenameAlbum: %v", err)
	}

	loaded, err := store.LoadAlbums()
	if err != nil {
		t.Fatalf("LoadAlbums: %v", err)
	}
	got, ok := loaded["album-1"]
	if !ok || got.DisplayName != "New Name" {
		t.Fatalf("expected renamed album, got %+v", got)
	}
}
