// Package storage measures on-disk usage of node record stores.
package storage

import (
	"io/fs"
	"path/filepath"
)

// PerNodeBytes is the storage each antnode process reserves for chunk
// data, in SI bytes to match the node's own accounting.
const PerNodeBytes = 35 * 1_000_000_000

// recordStoreDir is the subdirectory each node keeps its chunks in.
const recordStoreDir = "record_store"

// AllocatedBytes returns the total storage reserved by count nodes.
func AllocatedBytes(count int) int64 {
	if count < 0 {
		return 0
	}
	return int64(count) * PerNodeBytes
}

// UsedBytes sums the size of every file under each root's record_store
// directory. Nodes add and delete chunks while the walk runs, so any
// entry that cannot be read is skipped rather than failing the total.
func UsedBytes(roots []string) int64 {
	var total int64
	for _, root := range roots {
		if root == "" {
			continue
		}
		total += dirSize(filepath.Join(root, recordStoreDir))
	}
	return total
}

func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}
