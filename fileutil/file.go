// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package fileutil implements the whole-file operations used by the Ben
// builtins: writes which never leave a file half written, and copies which
// carry the permission bits along with the contents.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrIsDir is returned by [MoveCopy] when the source is a directory.
var ErrIsDir = errors.New("copying or moving directories is not implemented")

// ErrNotFile is returned by [MoveCopy] when the source is neither a regular
// file nor a directory, or does not exist.
var ErrNotFile = errors.New("unknown path item to move or copy")

// WriteFile replaces the contents of path with data. An existing file keeps
// its permission bits; a new file is created with mode 0o666 before umask.
func WriteFile(path string, data []byte) error {
	return writeFile(path, data, 0o666, true)
}

// AppendFile adds data to the end of the existing file at path, keeping its
// permission bits. Unlike [os.OpenFile] with [os.O_APPEND], the file must
// already exist.
func AppendFile(path string, data []byte) error {
	old, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return writeFile(path, append(old, data...), 0o666, true)
}

// MoveCopy copies the file at from to the path to, including its permission
// bits, creating any missing parent directories of to. If move is true,
// the source file is removed after the copy.
//
// Directories are not supported; the returned error then wraps [ErrIsDir].
func MoveCopy(from, to string, move bool) error {
	info, err := os.Stat(from)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", from, ErrNotFile)
	case err != nil:
		return err
	case info.IsDir():
		return fmt.Errorf("%s: %w", from, ErrIsDir)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%s: %w", from, ErrNotFile)
	}
	if dir := filepath.Dir(to); dir != "" {
		if err := os.MkdirAll(dir, 0o777); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(from)
	if err != nil {
		return err
	}
	// TODO: use os.Rename for moves within the same filesystem.
	if err := writeFile(to, data, info.Mode().Perm(), false); err != nil {
		return err
	}
	if move {
		return os.Remove(from)
	}
	return nil
}
