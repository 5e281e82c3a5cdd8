// Package syncengine drives the three-phase fetch/diff/write pipeline
// that applies a Differ plan to a Library Store (spec §4.3).
package syncengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"photomirror/internal/differ"
	"photomirror/internal/eventbus"
	"photomirror/internal/library"
	"photomirror/internal/logging"
	"photomirror/internal/model"
	"photomirror/internal/remote"
)

// Options configures one Engine.
type Options struct {
	Client          remote.Client
	Store           *library.Store
	Bus             *eventbus.Bus
	Logger          logging.Logger
	MaxRetries      int
	DownloadThreads int
	MetadataRate    rate.Limit
	MetadataBurst   int

	RetryCooldown time.Duration
	RetryExponent float64
}

// Engine runs sync passes against one library.Store.
type Engine struct {
	client          remote.Client
	store           *library.Store
	bus             *eventbus.Bus
	logger          logging.Logger
	maxRetries      int
	downloadThreads int
	metadataLimiter *rate.Limiter

	retryCooldown time.Duration
	retryExponent float64
}

// New constructs an Engine from Options, filling sane defaults for any
// zero-valued tuning knob.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	threads := opts.DownloadThreads
	if threads <= 0 {
		threads = 1
	}
	limit := opts.MetadataRate
	burst := opts.MetadataBurst
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	cooldown := opts.RetryCooldown
	if cooldown <= 0 {
		cooldown = 200 * time.Millisecond
	}
	exponent := opts.RetryExponent
	if exponent <= 0 {
		exponent = 2.0
	}

	return &Engine{
		client:          opts.Client,
		store:           opts.Store,
		bus:             opts.Bus,
		logger:          logger,
		maxRetries:      maxRetries,
		downloadThreads: threads,
		metadataLimiter: rate.NewLimiter(limit, burst),
		retryCooldown:   cooldown,
		retryExponent:   exponent,
	}
}

func (e *Engine) publish(label eventbus.Label, assetUUID, message string, err error) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(eventbus.Event{Label: label, AssetUUID: assetUUID, Message: message, Err: err})
}

// Run executes one complete fetch -> diff -> write pass against zone.
// AssetAdd operations run concurrently, bounded by downloadThreads; every
// AssetAdd completes (or exhausts its retries) before any album operation
// is applied, matching the asset-before-album barrier of spec §5.
func (e *Engine) Run(ctx context.Context, zone remote.Zone) error {
	e.publish(eventbus.Fetch, "", "fetching remote state", nil)
	remoteState, err := e.fetch(ctx, zone)
	if err != nil {
		runErr := newRunError("FetchFailed", "fetching remote state", err)
		e.publish(eventbus.Error, "", runErr.Error(), runErr)
		return runErr
	}

	e.publish(eventbus.Fetch, "", "loading local state", nil)
	localState, err := e.loadLocal()
	if err != nil {
		runErr := newRunError("LocalLoadFailed", "loading local state", err)
		e.publish(eventbus.Error, "", runErr.Error(), runErr)
		return runErr
	}
	e.pruneInvalidLocalAssets(localState, remoteState, e.logger.WithPhase(string(eventbus.Diff)))

	e.publish(eventbus.Diff, "", "computing plan", nil)
	plan := differ.Diff(remoteState, localState)
	plan, renames := coalesceRenames(plan)

	writeLogger := e.logger.WithPhase(string(eventbus.Write))
	e.publish(eventbus.Write, "", fmt.Sprintf("applying %d operations", len(plan)), nil)
	if err := e.apply(ctx, plan, renames, remoteState.Assets, writeLogger); err != nil {
		runErr := newRunError("ApplyFailed", "applying plan", err)
		e.publish(eventbus.Error, "", runErr.Error(), runErr)
		return runErr
	}

	if err := e.store.CleanArchivedOrphans(); err != nil {
		writeLogger.Warn("clean archived orphans failed", "err", err)
	}

	e.publish(eventbus.RecordCompleted, "", "run complete", nil)
	e.publish(eventbus.Done, "", "done", nil)
	return nil
}

func (e *Engine) fetch(ctx context.Context, zone remote.Zone) (differ.State, error) {
	if err := e.metadataLimiter.Wait(ctx); err != nil {
		return differ.State{}, err
	}
	albums, err := e.client.FetchAlbums(ctx, zone)
	if err != nil {
		return differ.State{}, fmt.Errorf("fetching remote albums: %w", err)
	}

	if err := e.metadataLimiter.Wait(ctx); err != nil {
		return differ.State{}, err
	}
	assets, err := e.client.FetchAssets(ctx, zone)
	if err != nil {
		return differ.State{}, fmt.Errorf("fetching remote assets: %w", err)
	}

	return differ.State{Albums: albums, Assets: assets}, nil
}

func (e *Engine) loadLocal() (differ.State, error) {
	assets, err := e.store.LoadAssets()
	if err != nil {
		return differ.State{}, fmt.Errorf("loading local assets: %w", err)
	}
	albums, err := e.store.LoadAlbums()
	if err != nil {
		return differ.State{}, fmt.Errorf("loading local albums: %w", err)
	}
	stashed, err := e.store.LoadStashedAlbums()
	if err != nil {
		return differ.State{}, fmt.Errorf("loading stashed albums: %w", err)
	}
	return differ.State{Albums: albums, Assets: assets, Stashed: stashed}, nil
}

// pruneInvalidLocalAssets drops any local asset that fails verification
// from the local state before diffing, so a dangling or corrupted file is
// treated as missing and re-fetched rather than silently trusted (spec §8
// scenario: corrupted local asset). An asset the remote still lists is
// verified against the remote descriptor's size and hash; the descriptor
// loaded from disk carries the file's own size and no hash.
func (e *Engine) pruneInvalidLocalAssets(state, remoteState differ.State, logger logging.Logger) {
	for uuid, asset := range state.Assets {
		if remoteAsset, listed := remoteState.Assets[uuid]; listed {
			asset = remoteAsset
		}
		ok, err := e.store.VerifyAsset(asset)
		if err != nil || !ok {
			logger.Warn("dropping invalid local asset from local state", "uuid", uuid, "err", err)
			delete(state.Assets, uuid)
		}
	}
}

// coalesceRenames detects AlbumRemove/AlbumAdd pairs that share a UUID
// (same-UUID rename or re-parent, spec §9 open question). It returns the
// plan with the AlbumRemove half of each such pair removed (the AlbumAdd
// half stays), plus a map from UUID to the album's prior identity so the
// write phase can call
// Store.RenameAlbum instead of a literal delete+recreate.
func coalesceRenames(plan []model.Operation) ([]model.Operation, map[string]*model.Album) {
	removedFrom := make(map[string]*model.Album)
	addedTo := make(map[string]*model.Album)
	for _, op := range plan {
		switch op.Kind {
		case model.AlbumRemove:
			removedFrom[op.UUID()] = op.Album
		case model.AlbumAdd:
			addedTo[op.UUID()] = op.Album
		}
	}

	renames := make(map[string]*model.Album)
	for uuid, oldAlbum := range removedFrom {
		if _, isRename := addedTo[uuid]; isRename {
			renames[uuid] = oldAlbum
		}
	}

	out := make([]model.Operation, 0, len(plan))
	for _, op := range plan {
		if _, isRename := renames[op.UUID()]; isRename {
			if op.Kind == model.AlbumRemove {
				continue
			}
			if op.Kind == model.AlbumAdd {
				out = append(out, op)
				continue
			}
		}
		out = append(out, op)
	}
	return out, renames
}

func (e *Engine) apply(ctx context.Context, plan []model.Operation, renames map[string]*model.Album, assetsByUUID map[string]*model.Asset, logger logging.Logger) error {
	assetAdds, rest := splitAssetAdds(plan)

	if err := e.applyAssetAdds(ctx, assetAdds, logger); err != nil {
		return err
	}

	for _, op := range rest {
		if err := e.applyOne(op, renames, assetsByUUID); err != nil {
			if isInvariantThreatening(err) {
				return err
			}
			logger.Warn("operation failed, continuing", "kind", op.Kind.String(), "uuid", op.UUID(), "err", err)
		}
	}
	return nil
}

func splitAssetAdds(plan []model.Operation) (adds, rest []model.Operation) {
	for _, op := range plan {
		if op.Kind == model.AssetAdd {
			adds = append(adds, op)
		} else {
			rest = append(rest, op)
		}
	}
	return adds, rest
}

func (e *Engine) applyAssetAdds(ctx context.Context, adds []model.Operation, logger logging.Logger) error {
	if len(adds) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.downloadThreads)

	for _, op := range adds {
		op := op
		g.Go(func() error {
			return e.downloadWithRetry(gctx, op.Asset, logger)
		})
	}
	return g.Wait()
}

// downloadWithRetry downloads asset into the store, retrying up to
// maxRetries times with exponential backoff (grounded on the same
// cooldown*exponent^tries shape the teacher's download manager uses).
// A terminal failure is recorded as a per-asset RECORD_COMPLETED failure
// and does not abort the run (spec §7).
func (e *Engine) downloadWithRetry(ctx context.Context, asset *model.Asset, logger logging.Logger) error {
	var lastErr error
	for tries := 0; tries <= e.maxRetries; tries++ {
		var buf bytes.Buffer
		if err := e.client.Download(ctx, asset, &buf); err != nil {
			lastErr = err
			e.waitForRetry(ctx, tries)
			continue
		}
		if err := e.store.WriteAsset(asset, bytes.NewReader(buf.Bytes())); err != nil {
			lastErr = err
			e.waitForRetry(ctx, tries)
			continue
		}
		e.publish(eventbus.RecordCompleted, asset.UUID, "downloaded", nil)
		return nil
	}

	e.publish(eventbus.RecordCompleted, asset.UUID, "download failed", lastErr)
	logger.Warn("asset download exhausted retries", "uuid", asset.UUID, "err", lastErr)
	return nil
}

func (e *Engine) waitForRetry(ctx context.Context, tries int) {
	cooldown := e.retryCooldown.Seconds() * math.Pow(e.retryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (e *Engine) applyOne(op model.Operation, renames map[string]*model.Album, assetsByUUID map[string]*model.Asset) error {
	switch op.Kind {
	case model.AlbumAdd:
		if oldAlbum, isRename := renames[op.UUID()]; isRename {
			return e.store.RenameAlbum(oldAlbum, op.Album)
		}
		return e.store.WriteAlbum(op.Album, assetsByUUID)
	case model.AlbumRemove:
		return e.store.DeleteAlbum(op.Album)
	case model.AlbumArchiveStash:
		return e.store.StashArchivedAlbum(op.Album)
	case model.AlbumArchiveRetrieve:
		return e.store.RetrieveStashedAlbum(op.Album)
	case model.AssetRemove:
		return e.store.DeleteAsset(op.Asset)
	default:
		return fmt.Errorf("unexpected operation kind in write phase: %s", op.Kind)
	}
}

func isInvariantThreatening(err error) bool {
	return errors.Is(err, library.ErrAmbiguousTree) || errors.Is(err, library.ErrNotEmpty)
}
