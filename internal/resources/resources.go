// Package resources implements the Shared Resources component: the
// process-wide configuration, network client handle, trust-token store,
// and event bus consumed by every other component (spec §4.4).
//
// The source this spec distills used a singleton with static accessors.
// Per spec §9's re-architecture guidance, this is a single explicit value
// constructed once at startup and passed to each component; the one-shot
// setup contract is preserved by making every accessor except EventBus
// fail with ErrNotInitiated until Setup has run, and by making Setup itself fail
// with ErrAlreadyInitiated on a second call on the same value.
package resources

import (
	"fmt"
	"path/filepath"
	"sync"

	"photomirror/internal/config"
	"photomirror/internal/eventbus"
	"photomirror/internal/logging"
	"photomirror/internal/remote"
)

// Options supplies the collaborators Setup wires together. Client may be
// nil in tests that never reach the network.
type Options struct {
	Config *config.Config
	Client remote.Client
	Logger logging.Logger
}

// Resources is the one-shot, process-wide shared state. The zero value is
// NotInitiated; call Setup exactly once before any other method.
type Resources struct {
	mu          sync.Mutex
	initiated   bool
	cfg         *config.Config
	client      remote.Client
	bus         *eventbus.Bus
	logger      logging.Logger
	resourceDir string

	trustToken           string
	primaryZoneAvailable bool
	sharedZoneAvailable  bool
}

// New returns a NotInitiated Resources value. Call Setup before use.
func New() *Resources {
	return &Resources{bus: eventbus.New()}
}

// Setup is the one-shot entry point (spec §4.4). It resolves the trust
// token from the resource file, honoring config overrides, and must be
// invoked exactly once.
func (r *Resources) Setup(opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initiated {
		return ErrAlreadyInitiated
	}
	if opts.Config == nil {
		return fmt.Errorf("resources: setup requires a config")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	resourcePath := filepath.Join(opts.Config.DataDir, ResourceFileName)
	rf, err := readResourceFile(resourcePath)
	if err != nil {
		return err
	}

	trustToken := rf.TrustToken
	if opts.Config.RefreshToken {
		trustToken = ""
	}
	if opts.Config.TrustToken != "" {
		trustToken = opts.Config.TrustToken
	}

	r.cfg = opts.Config
	r.client = opts.Client
	r.logger = logger
	r.resourceDir = opts.Config.DataDir
	r.trustToken = trustToken
	r.initiated = true

	if trustToken != rf.TrustToken {
		if err := r.persistTrustTokenLocked(); err != nil {
			logger.Warn("unable to persist trust token at setup", "err", err)
		}
	}

	return nil
}

func (r *Resources) resourceFilePath() string {
	return filepath.Join(r.resourceDir, ResourceFileName)
}

// ResourceFileName is the fixed basename of the resource file (spec §3).
const ResourceFileName = ".photos-library.db"

func (r *Resources) persistTrustTokenLocked() error {
	return writeResourceFile(r.resourceFilePath(), resourceFile{
		LibraryVersion: CurrentLibraryVersion,
		TrustToken:     r.trustToken,
	})
}

// Config returns the resolved configuration.
func (r *Resources) Config() (*config.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initiated {
		return nil, ErrNotInitiated
	}
	return r.cfg, nil
}

// Client returns the network client handle.
func (r *Resources) Client() (remote.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initiated {
		return nil, ErrNotInitiated
	}
	return r.client, nil
}

// EventBus returns the shared event bus. The bus exists from New() so
// subscribers may attach before Setup runs, but publishing from other
// accessors is still gated on initiation.
func (r *Resources) EventBus() *eventbus.Bus {
	return r.bus
}

// Logger returns the shared logger.
func (r *Resources) Logger() (logging.Logger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initiated {
		return nil, ErrNotInitiated
	}
	return r.logger, nil
}

// TrustToken returns the current trust token.
func (r *Resources) TrustToken() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initiated {
		return "", ErrNotInitiated
	}
	return r.trustToken, nil
}

// SetTrustToken mutates the trust token and atomically rewrites the
// resource file (spec §4.4 "Mutation of the trust token triggers an
// immediate atomic rewrite of the resource file").
func (r *Resources) SetTrustToken(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initiated {
		return ErrNotInitiated
	}
	r.trustToken = token
	return r.persistTrustTokenLocked()
}

// SetZoneDescriptors records whether the primary/shared zones resolved
// after authentication. This mutation is in-memory only (spec §4.4).
func (r *Resources) SetZoneDescriptors(primaryAvailable, sharedAvailable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initiated {
		return ErrNotInitiated
	}
	r.primaryZoneAvailable = primaryAvailable
	// Read from its own field, not derived from primaryZone: the source
	// reimplemented here had sharedZone read from primaryZone (spec §9
	// open question); that bug is not reproduced.
	r.sharedZoneAvailable = sharedAvailable
	return nil
}

// PrimaryZoneAvailable reports whether the primary zone resolved.
func (r *Resources) PrimaryZoneAvailable() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initiated {
		return false, ErrNotInitiated
	}
	return r.primaryZoneAvailable, nil
}

// SharedZoneAvailable reports whether the shared zone resolved.
func (r *Resources) SharedZoneAvailable() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initiated {
		return false, ErrNotInitiated
	}
	return r.sharedZoneAvailable, nil
}
