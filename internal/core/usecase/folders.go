package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/rmarchan/docuvault/internal/core/ports"
)

// FolderResolver maps category names to remote folder ids for a single
// user's drive, creating folders on first use. The cache lives for the
// resolver's lifetime; a per-name latch keeps two concurrent first-time
// resolutions of the same category from creating duplicate folders.
type FolderResolver struct {
	parentID string

	mu      sync.Mutex
	cache   map[string]string
	latches map[string]*sync.Mutex
}

func NewFolderResolver(parentID string) *FolderResolver {
	return &FolderResolver{
		parentID: parentID,
		cache:    make(map[string]string),
		latches:  make(map[string]*sync.Mutex),
	}
}

// Resolve returns the remote folder id for name, looking it up on the
// drive and creating it only when it does not exist yet. The drive
// session is passed per call because access tokens rotate between
// requests while the resolver outlives them.
func (r *FolderResolver) Resolve(ctx context.Context, drive ports.RemoteDrive, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty folder name")
	}

	r.mu.Lock()
	if id, ok := r.cache[name]; ok {
		r.mu.Unlock()
		return id, nil
	}
	latch, ok := r.latches[name]
	if !ok {
		latch = &sync.Mutex{}
		r.latches[name] = latch
	}
	r.mu.Unlock()

	latch.Lock()
	defer latch.Unlock()

	// A concurrent resolver may have filled the cache while this
	// goroutine waited on the latch.
	r.mu.Lock()
	if id, ok := r.cache[name]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	id, err := drive.FindFolder(ctx, name, r.parentID)
	if err != nil {
		return "", fmt.Errorf("find folder %q: %w", name, err)
	}
	if id == "" {
		id, err = drive.CreateFolder(ctx, name, r.parentID)
		if err != nil {
			return "", fmt.Errorf("create folder %q: %w", name, err)
		}
	}

	r.mu.Lock()
	r.cache[name] = id
	r.mu.Unlock()
	return id, nil
}
