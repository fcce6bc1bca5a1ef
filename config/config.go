// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package config loads the optional YAML configuration of the ben tool,
// which adjusts how its interpreter is set up.
//
// A configuration file looks like:
//
//	known_programs: [make, go]
//	coreutils: true
//	trace: false
//	env:
//	  GREETING: hello
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/benshell/ben/coreutils"
	"github.com/benshell/ben/expand"
	"github.com/benshell/ben/interp"
)

// FileName is the name of the configuration file looked up by [Find].
const FileName = ".ben.yaml"

// EnvVar is the environment variable which overrides [FileName] in [Find].
const EnvVar = "BEN_CONFIG"

// Config is the contents of a configuration file.
type Config struct {
	// Path is the file the configuration was loaded from.
	Path string `yaml:"-"`

	// KnownPrograms are extra command names which run the program of the
	// same name. See [interp.KnownPrograms].
	KnownPrograms []string `yaml:"known_programs"`

	// Coreutils enables running core utils in-process.
	// See [coreutils.ExecHandler].
	Coreutils bool `yaml:"coreutils"`

	// Trace prints each command to standard error before it runs.
	Trace bool `yaml:"trace"`

	// Env holds environment variables added to the environment seen by
	// scripts and the programs they run.
	Env map[string]string `yaml:"env"`
}

// Load reads and validates the configuration file at path.
// An empty file is a valid, empty configuration.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, name := range c.KnownPrograms {
		if name == "" {
			return fmt.Errorf("known_programs: names cannot be empty")
		}
		if interp.IsBuiltin(name) {
			return fmt.Errorf("known_programs: %q is a builtin", name)
		}
	}
	for name := range c.Env {
		if name == "" || strings.Contains(name, "=") {
			return fmt.Errorf("env: invalid variable name %q", name)
		}
	}
	return nil
}

// Find returns the path of the configuration file to use from dir.
// The file named by [EnvVar] in env is used if set; otherwise [FileName]
// in dir, if it exists. An empty path and nil error mean there is none.
func Find(dir string, env expand.Environ) (string, error) {
	if path, ok := env.Get(EnvVar); ok && path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return path, nil
	}
	path := filepath.Join(dir, FileName)
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", err
	}
}

// Environ returns base with the variables of the configuration added,
// replacing any of the same name. A nil base means the process's environment.
func (c *Config) Environ(base expand.Environ) expand.Environ {
	if len(c.Env) == 0 {
		return base
	}
	if base == nil {
		base = expand.ListEnviron(os.Environ()...)
	}
	pairs := expand.Pairs(base)
	names := make([]string, 0, len(c.Env))
	for name := range c.Env {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		pairs = append(pairs, name+"="+c.Env[name])
	}
	// later pairs take priority
	return expand.ListEnviron(pairs...)
}

// RunnerOptions returns the interpreter options for the configuration,
// given the environment the interpreter would otherwise use.
func (c *Config) RunnerOptions(base expand.Environ) []interp.RunnerOption {
	opts := []interp.RunnerOption{
		interp.Env(c.Environ(base)),
		interp.KnownPrograms(c.KnownPrograms...),
	}
	if c.Trace {
		opts = append(opts, interp.Trace(true))
	}
	if c.Coreutils {
		opts = append(opts, interp.ExecHandlers(coreutils.ExecHandler))
	}
	return opts
}
