package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"photomirror/internal/model"
	"photomirror/internal/remote"
)

// FakeClient is an in-memory remote.Client. Albums, Assets, and Blobs are
// keyed by UUID; tests populate them directly before exercising the sync
// engine or differ against a Fetch call.
type FakeClient struct {
	mu sync.Mutex

	Albums map[string]*model.Album
	Assets map[string]*model.Asset
	Blobs  map[string][]byte

	// FailDownload maps an asset UUID to the number of Download calls
	// that return an error before later calls stream its bytes — used to
	// exercise retry and terminal-failure paths.
	FailDownload map[string]int

	Deleted []string
}

// NewFakeClient returns an empty FakeClient ready for population.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Albums:       make(map[string]*model.Album),
		Assets:       make(map[string]*model.Asset),
		Blobs:        make(map[string][]byte),
		FailDownload: make(map[string]int),
	}
}

var _ remote.Client = (*FakeClient)(nil)

func (c *FakeClient) FetchAlbums(ctx context.Context, zone remote.Zone) (map[string]*model.Album, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*model.Album, len(c.Albums))
	for k, v := range c.Albums {
		out[k] = v
	}
	return out, nil
}

func (c *FakeClient) FetchAssets(ctx context.Context, zone remote.Zone) (map[string]*model.Asset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*model.Asset, len(c.Assets))
	for k, v := range c.Assets {
		out[k] = v
	}
	return out, nil
}

func (c *FakeClient) Download(ctx context.Context, asset *model.Asset, w io.Writer) error {
	c.mu.Lock()
	remaining := c.FailDownload[asset.UUID]
	if remaining > 0 {
		c.FailDownload[asset.UUID] = remaining - 1
		c.mu.Unlock()
		return fmt.Errorf("testutil: forced download failure for %s", asset.UUID)
	}
	blob := c.Blobs[asset.UUID]
	c.mu.Unlock()

	_, err := io.Copy(w, bytes.NewReader(blob))
	return err
}

func (c *FakeClient) DeleteRemote(ctx context.Context, asset *model.Asset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deleted = append(c.Deleted, asset.UUID)
	delete(c.Assets, asset.UUID)
	return nil
}
