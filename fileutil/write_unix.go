// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

//go:build !windows

package fileutil

import (
	"io/fs"

	"github.com/google/renameio/v2"
)

// writeFile atomically replaces path. If keepExisting is set and path exists,
// its permission bits are kept, and a new file gets perm minus umask.
// Otherwise the file always ends up with exactly perm.
func writeFile(path string, data []byte, perm fs.FileMode, keepExisting bool) error {
	opts := []renameio.Option{renameio.WithStaticPermissions(perm)}
	if keepExisting {
		opts = []renameio.Option{renameio.WithPermissions(perm), renameio.WithExistingPermissions()}
	}
	f, err := renameio.NewPendingFile(path, opts...)
	if err != nil {
		return err
	}
	defer f.Cleanup()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.CloseAtomicallyReplace()
}
