// Package remote defines the network client contract the Sync Engine
// depends on. Authentication, MFA capture, and HTTP transport details are
// explicitly out of scope (spec §1); this package only names the surface
// the engine needs to fetch listings and download bytes.
package remote

import (
	"context"
	"io"

	"photomirror/internal/model"
)

// Zone identifies a logical partition of the remote account.
type Zone string

const (
	ZonePrimary Zone = "primary"
	ZoneShared  Zone = "shared"
)

// Client is the network collaborator the Sync Engine fetches remote state
// and asset bytes through. Implementations own authentication, MFA, retry
// policy below the per-request timeout, and wire formats.
type Client interface {
	// FetchAlbums returns every remote album in the given zone.
	FetchAlbums(ctx context.Context, zone Zone) (map[string]*model.Album, error)
	// FetchAssets returns every remote asset descriptor in the given zone.
	FetchAssets(ctx context.Context, zone Zone) (map[string]*model.Asset, error)
	// Download streams an asset's bytes to w.
	Download(ctx context.Context, asset *model.Asset, w io.Writer) error
	// DeleteRemote requests deletion of a remote asset. Only invoked when
	// the remote_delete config flag is set (spec §1 Non-goals, §6).
	DeleteRemote(ctx context.Context, asset *model.Asset) error
}

// TrustStore is the collaborator that persists the mutable trust token.
// Mutation triggers an immediate atomic rewrite of the resource file
// (spec §4.4); reads are served from memory.
type TrustStore interface {
	TrustToken() string
	SetTrustToken(token string) error
}
