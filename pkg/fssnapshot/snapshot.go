// Package fssnapshot provides content-hash snapshots of a set of files and
// the diff between two snapshots, backed by a durable catalogue.
package fssnapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/agentkit/plankernel/pkg/ids"
)

// FileHash is one path's content hash at snapshot time.
type FileHash struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Snapshot is a point-in-time content hash catalogue over a path set.
type Snapshot struct {
	ID        string     `json:"id"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt string     `json:"created_at"`
	Files     []FileHash `json:"files"`
}

// hashFile computes the SHA-256 of a file's contents.
func hashFile(path string) (FileHash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileHash{}, fmt.Errorf("fssnapshot: read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return FileHash{Path: path, Hash: hex.EncodeToString(sum[:]), Size: int64(len(data))}, nil
}

// Create hashes every path concurrently, one errgroup goroutine per path
// with no concurrency limit. Each path is read as a single file;
// directories are not walked.
func Create(ctx context.Context, reason string, paths []string) (Snapshot, error) {
	results := make([]FileHash, len(paths))
	g, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			fh, err := hashFile(p)
			if err != nil {
				return err
			}
			results[i] = fh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		ID:        ids.RandomID("snap_"),
		Reason:    reason,
		CreatedAt: ids.NowISO8601(),
		Files:     results,
	}, nil
}

// ChangeKind classifies one path's difference between two snapshots.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// Change is one path's delta between two snapshots.
type Change struct {
	Path string     `json:"path"`
	Kind ChangeKind `json:"kind"`
}

// Diff compares two snapshots by path, reporting added/removed/modified
// files based on hash equality.
func Diff(before, after Snapshot) []Change {
	beforeByPath := make(map[string]FileHash, len(before.Files))
	for _, f := range before.Files {
		beforeByPath[f.Path] = f
	}
	afterByPath := make(map[string]FileHash, len(after.Files))
	for _, f := range after.Files {
		afterByPath[f.Path] = f
	}

	var changes []Change
	for path, a := range afterByPath {
		b, existed := beforeByPath[path]
		switch {
		case !existed:
			changes = append(changes, Change{Path: path, Kind: ChangeAdded})
		case b.Hash != a.Hash:
			changes = append(changes, Change{Path: path, Kind: ChangeModified})
		}
	}
	for path := range beforeByPath {
		if _, stillExists := afterByPath[path]; !stillExists {
			changes = append(changes, Change{Path: path, Kind: ChangeRemoved})
		}
	}
	return changes
}
