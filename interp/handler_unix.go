// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

//go:build unix

package interp

import (
	"fmt"
	"io/fs"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/benshell/ben/expand"
)

type waitStatus = syscall.WaitStatus

// checkExecutable asks the kernel whether the current user may execute path,
// which takes ownership, groups and ACLs into account.
func checkExecutable(path string, _ fs.FileInfo) error {
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("permission denied")
	}
	return nil
}

func hasDirPart(file string) bool { return strings.Contains(file, "/") }

func executableNames(_ expand.Environ, file string) []string { return []string{file} }
