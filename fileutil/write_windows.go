// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package fileutil

import (
	"io/fs"
	"os"
)

// TODO: support atomic writes on Windows once renameio supports it.
func writeFile(path string, data []byte, perm fs.FileMode, keepExisting bool) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return err
	}
	if keepExisting {
		return nil
	}
	return os.Chmod(path, perm)
}
