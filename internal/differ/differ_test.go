package differ

import (
	"testing"

	"photomirror/internal/model"
)

func kindsInOrder(ops []model.Operation) []model.OperationKind {
	out := make([]model.OperationKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func indexOfUUID(ops []model.Operation, uuid string) int {
	for i, op := range ops {
		if op.UUID() == uuid {
			return i
		}
	}
	return -1
}

func TestDiffAssetAddAndRemove(t *testing.T) {
	remote := State{Assets: map[string]*model.Asset{"a1": {UUID: "a1"}}}
	local := State{Assets: map[string]*model.Asset{"a2": {UUID: "a2"}}}

	ops := Diff(remote, local)
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d: %v", len(ops), ops)
	}

	addIdx := indexOfUUID(ops, "a1")
	removeIdx := indexOfUUID(ops, "a2")
	if addIdx == -1 || removeIdx == -1 {
		t.Fatalf("expected both a1 add and a2 remove present: %v", ops)
	}
	if ops[addIdx].Kind != model.AssetAdd {
		t.Fatalf("expected a1 op to be AssetAdd, got %v", ops[addIdx].Kind)
	}
	if ops[removeIdx].Kind != model.AssetRemove {
		t.Fatalf("expected a2 op to be AssetRemove, got %v", ops[removeIdx].Kind)
	}
}

func TestDiffAssetAddsBeforeAlbumAdds(t *testing.T) {
	remote := State{
		Assets: map[string]*model.Asset{"a1": {UUID: "a1"}},
		Albums: map[string]*model.Album{"b1": {UUID: "b1", Kind: model.KindAlbum}},
	}
	local := State{}

	ops := Diff(remote, local)
	assetIdx := indexOfUUID(ops, "a1")
	albumIdx := indexOfUUID(ops, "b1")
	if assetIdx >= albumIdx {
		t.Fatalf("expected AssetAdd before AlbumAdd, got order %v", kindsInOrder(ops))
	}
}

func TestDiffAlbumRemovesBeforeAssetRemoves(t *testing.T) {
	remote := State{}
	local := State{
		Assets: map[string]*model.Asset{"a1": {UUID: "a1"}},
		Albums: map[string]*model.Album{"b1": {UUID: "b1", Kind: model.KindAlbum}},
	}

	ops := Diff(remote, local)
	albumIdx := indexOfUUID(ops, "b1")
	assetIdx := indexOfUUID(ops, "a1")
	if albumIdx >= assetIdx {
		t.Fatalf("expected AlbumRemove before AssetRemove, got order %v", kindsInOrder(ops))
	}
}

func TestDiffAlbumAddsOrderedParentBeforeChild(t *testing.T) {
	remote := State{
		Albums: map[string]*model.Album{
			"parent": {UUID: "parent", Kind: model.KindFolder},
			"child":  {UUID: "child", Kind: model.KindAlbum, ParentUUID: "parent"},
		},
	}
	local := State{}

	ops := Diff(remote, local)
	parentIdx := indexOfUUID(ops, "parent")
	childIdx := indexOfUUID(ops, "child")
	if parentIdx >= childIdx {
		t.Fatalf("expected parent add before child add, got order %v", kindsInOrder(ops))
	}
}

func TestDiffAlbumRemovesOrderedChildBeforeParent(t *testing.T) {
	remote := State{}
	local := State{
		Albums: map[string]*model.Album{
			"parent": {UUID: "parent", Kind: model.KindFolder},
			"child":  {UUID: "child", Kind: model.KindAlbum, ParentUUID: "parent"},
		},
	}

	ops := Diff(remote, local)
	parentIdx := indexOfUUID(ops, "parent")
	childIdx := indexOfUUID(ops, "child")
	if childIdx >= parentIdx {
		t.Fatalf("expected child remove before parent remove, got order %v", kindsInOrder(ops))
	}
}

func TestDiffArchivedAlbumRetainedWhenStillRemote(t *testing.T) {
	remote := State{Albums: map[string]*model.Album{"arc": {UUID: "arc", Kind: model.KindArchived}}}
	local := State{Albums: map[string]*model.Album{"arc": {UUID: "arc", Kind: model.KindArchived}}}

	ops := Diff(remote, local)
	if len(ops) != 0 {
		t.Fatalf("expected no ops for a stable archived album, got %v", ops)
	}
}

func TestDiffArchivedAlbumMissingRemoteIsStashed(t *testing.T) {
	remote := State{}
	local := State{Albums: map[string]*model.Album{"arc": {UUID: "arc", Kind: model.KindArchived}}}

	ops := Diff(remote, local)
	if len(ops) != 1 || ops[0].Kind != model.AlbumArchiveStash {
		t.Fatalf("expected a single AlbumArchiveStash op, got %v", ops)
	}
}

func TestDiffRenamedAlbumProducesRemoveAddPair(t *testing.T) {
	remote := State{Albums: map[string]*model.Album{"b1": {UUID: "b1", Kind: model.KindAlbum, DisplayName: "New"}}}
	local := State{Albums: map[string]*model.Album{"b1": {UUID: "b1", Kind: model.KindAlbum, DisplayName: "Old"}}}

	ops := Diff(remote, local)
	var hasRemove, hasAdd bool
	for _, op := range ops {
		if op.UUID() != "b1" {
			continue
		}
		if op.Kind == model.AlbumRemove {
			hasRemove = true
		}
		if op.Kind == model.AlbumAdd {
			hasAdd = true
		}
	}
	if !hasRemove || !hasAdd {
		t.Fatalf("expected both a remove and an add for the renamed album b1, got %v", ops)
	}
}

func TestDiffStashedAlbumReappearingRemoteIsRetrieved(t *testing.T) {
	remote := State{Albums: map[string]*model.Album{"arc": {UUID: "arc", Kind: model.KindArchived, DisplayName: "Forgotten"}}}
	local := State{
		Stashed: map[string]*model.Album{"arc": {UUID: "arc", Kind: model.KindArchived, DisplayName: "Forgotten"}},
	}

	ops := Diff(remote, local)
	if len(ops) != 1 || ops[0].Kind != model.AlbumArchiveRetrieve {
		t.Fatalf("expected a single AlbumArchiveRetrieve op, got %v", ops)
	}
	if ops[0].Album != remote.Albums["arc"] {
		t.Fatalf("expected the retrieve op to carry the remote album descriptor")
	}
}

func TestDiffTiesBreakOnUUID(t *testing.T) {
	remote := State{Assets: map[string]*model.Asset{
		"z1": {UUID: "z1"},
		"a1": {UUID: "a1"},
	}}
	local := State{}

	ops := Diff(remote, local)
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(ops))
	}
	if ops[0].UUID() != "a1" || ops[1].UUID() != "z1" {
		t.Fatalf("expected ascending UUID tie-break, got %v", kindsInOrder(ops))
	}
}

func TestDiffIsDeterministicAcrossRuns(t *testing.T) {
	remote := State{Assets: map[string]*model.Asset{
		"c1": {UUID: "c1"}, "a1": {UUID: "a1"}, "b1": {UUID: "b1"},
	}}
	local := State{}

	first := Diff(remote, local)
	second := Diff(remote, local)
	if len(first) != len(second) {
		t.Fatalf("expected stable op count across runs")
	}
	for i := range first {
		if first[i].UUID() != second[i].UUID() {
			t.Fatalf("expected identical ordering across runs at index %d", i)
		}
	}
}
