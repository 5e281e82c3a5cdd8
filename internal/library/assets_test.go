package library

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photomirror/internal/model"
)

func newAsset(uuid, ext string, data []byte) *model.Asset {
	sum := sha256.Sum256(data)
	return &model.Asset{
		UUID:         uuid,
		Extension:    ext,
		SizeBytes:    int64(len(data)),
		ContentHash:  hex.EncodeToString(sum[:]),
		ModifiedTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestWriteAssetThenVerify(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	data := []byte("photo bytes")
	asset := newAsset("u1", "jpg", data)

	if err := store.WriteAsset(asset, bytes.NewReader(data)); err != nil {
		t.Fatalf("WriteAsset: %v", err)
	}

	ok, err := store.VerifyAsset(asset)
	if err != nil {
		t.Fatalf("VerifyAsset: %v", err)
	}
	if !ok {
		t.Fatalf("expected verification to succeed")
	}
}

func TestWriteAssetRejectsSizeMismatch(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	data := []byte("photo bytes")
	asset := newAsset("u1", "jpg", data)
	asset.SizeBytes = int64(len(data)) + 1

	if err := store.WriteAsset(asset, bytes.NewReader(data)); err == nil {
		t.Fatalf("expected error on size mismatch")
	}
}

func TestVerifyAssetMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	asset := newAsset("missing", "jpg", []byte("x"))
	ok, err := store.VerifyAsset(asset)
	if err != nil {
		t.Fatalf("VerifyAsset: %v", err)
	}
	if ok {
		t.Fatalf("expected verification to fail for missing file")
	}
}

func TestLoadAssetsReflectsDirectory(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	data := []byte("content")
	asset := newAsset("u2", "png", data)
	if err := store.WriteAsset(asset, bytes.NewReader(data)); err != nil {
		t.Fatalf("WriteAsset: %v", err)
	}

	assets, err := store.LoadAssets()
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}
	got, ok := assets["u2"]
	if !ok {
		t.Fatalf("expected u2 in loaded assets, got %v", assets)
	}
	if got.Extension != "png" || got.SizeBytes != int64(len(data)) {
		t.Fatalf("loaded asset mismatch: %+v", got)
	}
}

func TestLoadAssetsSkipsSafeFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}

	if err := os.WriteFile(filepath.Join(store.AssetDir(), ".DS_Store"), []byte("junk"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	assets, err := store.LoadAssets()
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}
	if len(assets) != 0 {
		t.Fatalf("expected .DS_Store to be skipped (no extension), got %v", assets)
	}
}

func TestDeleteAssetIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	asset := newAsset("u3", "jpg", []byte("x"))

	if err := store.DeleteAsset(asset); err != nil {
		t.Fatalf("DeleteAsset on missing file should be a no-op: %v", err)
	}

	data := []byte("bytes")
	asset2 := newAsset("u4", "jpg", data)
	if err := store.WriteAsset(asset2, bytes.NewReader(data)); err != nil {
		t.Fatalf("WriteAsset: %v", err)
	}
	if err := store.DeleteAsset(asset2); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if err := store.DeleteAsset(asset2); err != nil {
		t.Fatalf("second DeleteAsset should be a no-op: %v", err)
	}
}
