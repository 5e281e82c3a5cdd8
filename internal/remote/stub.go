package remote

import (
	"context"
	"fmt"
	"io"

	"photomirror/internal/model"
)

// ErrNotImplemented is returned by UnimplementedClient for every method.
// Authentication and HTTP transport against the remote service are
// explicitly out of scope (spec §1); this client exists only so
// cmd/photomirror has a concrete Client to wire by default until a real
// transport is supplied.
var ErrNotImplemented = fmt.Errorf("remote: no client transport configured")

// UnimplementedClient satisfies Client but fails every call. It lets the
// CLI construct a full Engine without a real transport, surfacing a clear
// error the moment a sync pass actually touches the network.
type UnimplementedClient struct{}

func (UnimplementedClient) FetchAlbums(context.Context, Zone) (map[string]*model.Album, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedClient) FetchAssets(context.Context, Zone) (map[string]*model.Asset, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedClient) Download(context.Context, *model.Asset, io.Writer) error {
	return ErrNotImplemented
}

func (UnimplementedClient) DeleteRemote(context.Context, *model.Asset) error {
	return ErrNotImplemented
}
