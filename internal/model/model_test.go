package model

import "testing"

func TestAssetFileName(t *testing.T) {
	cases := []struct {
		asset Asset
		want  string
	}{
		{Asset{UUID: "abc", Extension: "jpg"}, "abc.jpg"},
		{Asset{UUID: "abc"}, "abc"},
	}
	for _, c := range cases {
		if got := c.asset.FileName(); got != c.want {
			t.Errorf("FileName() = %q, want %q", got, c.want)
		}
	}
}

func TestAlbumIsRoot(t *testing.T) {
	if !(Album{}).IsRoot() {
		t.Errorf("zero-value album should be root")
	}
	if (Album{UUID: "x"}).IsRoot() {
		t.Errorf("album with UUID should not be root")
	}
}

func TestOperationUUID(t *testing.T) {
	op := Operation{Kind: AssetAdd, Asset: &Asset{UUID: "a1"}}
	if op.UUID() != "a1" {
		t.Errorf("UUID() = %q, want a1", op.UUID())
	}
	op2 := Operation{Kind: AlbumAdd, Album: &Album{UUID: "b1"}}
	if op2.UUID() != "b1" {
		t.Errorf("UUID() = %q, want b1", op2.UUID())
	}
}

func TestOperationKindString(t *testing.T) {
	if AssetAdd.String() != "AssetAdd" {
		t.Errorf("String() = %q", AssetAdd.String())
	}
}
