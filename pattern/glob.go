// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package pattern

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// GlobConfig specifies how [Glob] reads the filesystem.
// Each of the fields may be left as zero values.
type GlobConfig struct {
	// Dir is the directory which relative patterns are resolved against.
	// If empty, the process's current directory is used.
	Dir string

	// ReadDir lists a directory, sorted by name. If nil, [os.ReadDir] is used.
	ReadDir func(path string) ([]fs.DirEntry, error)

	// Lstat reports whether a file exists. If nil, [os.Lstat] is used.
	Lstat func(path string) (fs.FileInfo, error)
}

func (cfg *GlobConfig) readDir(path string) ([]fs.DirEntry, error) {
	if cfg.ReadDir != nil {
		return cfg.ReadDir(path)
	}
	return os.ReadDir(path)
}

func (cfg *GlobConfig) exists(path string) bool {
	var err error
	if cfg.Lstat != nil {
		_, err = cfg.Lstat(path)
	} else {
		_, err = os.Lstat(path)
	}
	return err == nil
}

// abs turns a match, which may be relative to Dir, into a host path.
func (cfg *GlobConfig) abs(match string) string {
	if match == "" {
		match = "."
	}
	path := filepath.FromSlash(match)
	if filepath.IsAbs(path) || cfg.Dir == "" {
		return path
	}
	return filepath.Join(cfg.Dir, path)
}

type component struct {
	lit       string
	rx        *regexp.Regexp
	recursive bool
}

// Glob returns the names of all files matching pat, in the order found when
// walking the directories. Each path component of pat is matched separately;
// "*" and "?" never match a slash. A component "**" matches any number of
// directories, including none. When it is the last component, it matches
// every file and directory below the previous ones.
//
// Matches use forward slashes and keep the form of the pattern, so that a
// relative pattern gives relative matches. An empty pattern matches nothing.
// Directories which cannot be read are skipped; the only errors returned are
// for malformed patterns.
func Glob(cfg *GlobConfig, pat string) ([]string, error) {
	if cfg == nil {
		cfg = &GlobConfig{}
	}
	pat = filepath.ToSlash(pat)
	if pat == "" {
		return nil, nil
	}
	root := ""
	if vol := filepath.VolumeName(pat); vol != "" {
		root, pat = vol, pat[len(vol):]
	}
	if strings.HasPrefix(pat, "/") {
		root += "/"
	}
	var comps []component
	for _, part := range strings.Split(pat, "/") {
		switch {
		case part == "":
		case part == "**":
			comps = append(comps, component{recursive: true})
		case HasMeta(part):
			expr, err := Regexp(part)
			if err != nil {
				return nil, err
			}
			comps = append(comps, component{rx: regexp.MustCompile("^(?:" + expr + ")$")})
		default:
			comps = append(comps, component{lit: part})
		}
	}
	if len(comps) == 0 {
		// only a root, such as "/"
		if cfg.exists(cfg.abs(root)) {
			return []string{root}, nil
		}
		return nil, nil
	}

	matches := []string{root}
	for i, comp := range comps {
		last := i == len(comps)-1
		var next []string
		for _, base := range matches {
			switch {
			case comp.recursive:
				if !last {
					next = append(next, base)
				}
				next = cfg.walk(next, base, !last)
			case comp.rx != nil:
				entries, err := cfg.readDir(cfg.abs(base))
				if err != nil {
					continue
				}
				for _, entry := range entries {
					if comp.rx.MatchString(entry.Name()) {
						next = append(next, join(base, entry.Name()))
					}
				}
			default:
				if path := join(base, comp.lit); cfg.exists(cfg.abs(path)) {
					next = append(next, path)
				}
			}
		}
		matches = dedup(next)
		if len(matches) == 0 {
			return nil, nil
		}
	}
	return matches, nil
}

// walk appends all the entries below base, in depth-first order.
// Symbolic links to directories are not followed.
func (cfg *GlobConfig) walk(list []string, base string, dirsOnly bool) []string {
	entries, err := cfg.readDir(cfg.abs(base))
	if err != nil {
		return list
	}
	for _, entry := range entries {
		path := join(base, entry.Name())
		if entry.IsDir() {
			list = append(list, path)
			list = cfg.walk(list, path, dirsOnly)
		} else if !dirsOnly {
			list = append(list, path)
		}
	}
	return list
}

func join(base, name string) string {
	if base == "" {
		return name
	}
	if strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}

func dedup(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
