// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

//go:build !unix

package interp

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/benshell/ben/expand"
)

// waitStatus is a no-op, as there is no portable way to tell whether
// a process was killed by a signal.
type waitStatus struct{}

func (waitStatus) Signaled() bool { return false }
func (waitStatus) Signal() int    { return 0 }

func checkExecutable(path string, info fs.FileInfo) error {
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("permission denied")
	}
	return nil
}

func hasDirPart(file string) bool {
	if runtime.GOOS == "windows" {
		return strings.ContainsAny(file, `:\/`)
	}
	return strings.Contains(file, "/")
}

// executableNames lists the names a program may have on disk. On Windows,
// that is the name itself if it has an extension, followed by the name with
// each of the extensions in PATHEXT.
func executableNames(env expand.Environ, file string) []string {
	if runtime.GOOS != "windows" {
		return []string{file}
	}
	var names []string
	if filepath.Ext(file) != "" {
		names = append(names, file)
	}
	pathext, _ := env.Get("PATHEXT")
	if pathext == "" {
		pathext = ".com;.exe;.bat;.cmd"
	}
	for _, ext := range strings.Split(strings.ToLower(pathext), ";") {
		if ext == "" {
			continue
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		names = append(names, file+ext)
	}
	return names
}
