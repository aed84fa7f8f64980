// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// removeTree removes the directory tree rooted at path without ever
// crossing into another filesystem. The device number of the tree root is
// the reference; any entry on a different device aborts the removal with a
// [BoundaryError] before anything below it is touched.
func removeTree(path string) error {
	var stat unix.Stat_t

	err := unix.Lstat(path, &stat)
	if err != nil {
		return fmt.Errorf("lstat %s: %w", path, err)
	}

	err = removeAllOnDev(path, stat.Dev)
	if err != nil {
		return err
	}

	return os.Remove(path)
}

func removeAllOnDev(path string, dev uint64) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", path, err)
	}

	for _, entry := range entries {
		entryPath := filepath.Join(path, entry.Name())

		var stat unix.Stat_t

		err := unix.Lstat(entryPath, &stat)
		if err != nil {
			return fmt.Errorf("lstat %s: %w", entryPath, err)
		}

		if stat.Dev != dev {
			return &BoundaryError{Path: entryPath}
		}

		if entry.IsDir() {
			err := removeAllOnDev(entryPath, dev)
			if err != nil {
				return err
			}
		}

		err = os.Remove(entryPath)
		if err != nil {
			return fmt.Errorf("remove %s: %w", entryPath, err)
		}
	}

	return nil
}
