// Package differ computes the ordered sequence of write operations that
// transforms the current local library state into the remote state,
// honoring archive semantics (spec §4.2). Diff is a pure function: it
// reads nothing from disk or network, only the state handed to it.
package differ

import (
	"sort"

	"photomirror/internal/model"
)

// State is one side (remote or local) of a diff: the album tree and the
// flat asset set, both keyed by UUID.
type State struct {
	Albums map[string]*model.Album
	Assets map[string]*model.Asset
	// Stashed holds, on the local side only, the albums currently parked
	// in the stash staging area, keyed by UUID. A remote UUID that
	// reappears here has come back rather than arrived fresh, and must
	// be retrieved out of the stash instead of created anew (spec §4.1
	// retrieve_stashed_album, §8 scenario 6).
	Stashed map[string]*model.Album
}

// Diff computes the ordered operation list transforming local into
// remote, per the ordering rules of spec §4.2:
//  1. all AssetAdd before any AlbumAdd
//  2. all AlbumRemove before any AssetRemove
//  3. album adds ascending depth (parents first), removes descending
//     depth (children first)
//  4. archive stash precedes any sibling remove
//
// Ties within a rank break on ascending UUID for determinism (spec P5).
func Diff(remote, local State) []model.Operation {
	var assetAdds, assetRemoves, albumAdds, albumRemoves, stashes, retrieves []model.Operation

	for uuid, asset := range remote.Assets {
		if _, ok := local.Assets[uuid]; !ok {
			assetAdds = append(assetAdds, model.Operation{Kind: model.AssetAdd, Asset: asset})
		}
	}
	for uuid, asset := range local.Assets {
		if _, ok := remote.Assets[uuid]; !ok {
			assetRemoves = append(assetRemoves, model.Operation{Kind: model.AssetRemove, Asset: asset})
		}
	}

	for uuid, remoteAlbum := range remote.Albums {
		localAlbum, present := local.Albums[uuid]
		switch {
		case !present:
			if _, stashed := local.Stashed[uuid]; stashed {
				retrieves = append(retrieves, model.Operation{Kind: model.AlbumArchiveRetrieve, Album: remoteAlbum})
			} else {
				albumAdds = append(albumAdds, model.Operation{Kind: model.AlbumAdd, Album: remoteAlbum})
			}
		case localAlbum.Kind == model.KindArchived:
			// archive detection: remote still lists the UUID, retain as-is
		case albumChanged(localAlbum, remoteAlbum):
			albumRemoves = append(albumRemoves, model.Operation{Kind: model.AlbumRemove, Album: localAlbum})
			albumAdds = append(albumAdds, model.Operation{Kind: model.AlbumAdd, Album: remoteAlbum})
		}
	}
	for uuid, localAlbum := range local.Albums {
		if _, present := remote.Albums[uuid]; present {
			continue
		}
		if localAlbum.Kind == model.KindArchived {
			stashes = append(stashes, model.Operation{Kind: model.AlbumArchiveStash, Album: localAlbum})
			continue
		}
		albumRemoves = append(albumRemoves, model.Operation{Kind: model.AlbumRemove, Album: localAlbum})
	}

	sortByUUID(assetAdds)
	sortByUUID(assetRemoves)
	sortAlbumsByDepth(albumAdds, remote.Albums, false)
	sortAlbumsByDepth(albumRemoves, local.Albums, true)
	sortByUUID(stashes)
	// Retrieves depend on find_album_paths resolving the remote parent
	// chain on disk, which may include a folder created by an albumAdd
	// earlier in this same plan; order parents before children exactly
	// as albumAdds does, and run the whole batch after albumAdds.
	sortAlbumsByDepth(retrieves, remote.Albums, false)

	var plan []model.Operation
	plan = append(plan, assetAdds...)
	plan = append(plan, stashes...)
	plan = append(plan, albumAdds...)
	plan = append(plan, retrieves...)
	plan = append(plan, albumRemoves...)
	plan = append(plan, assetRemoves...)
	return plan
}

// albumChanged reports whether an album present on both sides needs a
// rename/re-parent swap: its display name or parent moved.
func albumChanged(local, remote *model.Album) bool {
	return local.DisplayName != remote.DisplayName || local.ParentUUID != remote.ParentUUID
}

func sortByUUID(ops []model.Operation) {
	sort.Slice(ops, func(i, j int) bool { return ops[i].UUID() < ops[j].UUID() })
}

// sortAlbumsByDepth orders album operations by tree depth: ascending
// (parents before children) when descending is false, descending
// (children before parents) otherwise. Ties break on ascending UUID.
func sortAlbumsByDepth(ops []model.Operation, albums map[string]*model.Album, descending bool) {
	depth := make(map[string]int, len(ops))
	for _, op := range ops {
		depth[op.UUID()] = albumDepth(op.Album, albums)
	}
	sort.Slice(ops, func(i, j int) bool {
		di, dj := depth[ops[i].UUID()], depth[ops[j].UUID()]
		if di != dj {
			if descending {
				return di > dj
			}
			return di < dj
		}
		return ops[i].UUID() < ops[j].UUID()
	})
}

// albumDepth counts the hops from album to the root via ParentUUID,
// guarding against cycles by capping at the size of the album set.
func albumDepth(album *model.Album, albums map[string]*model.Album) int {
	depth := 0
	current := album
	seen := make(map[string]struct{})
	for current != nil && current.ParentUUID != "" {
		if _, ok := seen[current.UUID]; ok {
			break
		}
		seen[current.UUID] = struct{}{}
		parent, ok := albums[current.ParentUUID]
		if !ok {
			break
		}
		depth++
		current = parent
		if depth > len(albums)+1 {
			break
		}
	}
	return depth
}
