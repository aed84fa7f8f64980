// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wren-os/wrenrun/internal/harness"
	"github.com/wren-os/wrenrun/internal/image"
	"github.com/wren-os/wrenrun/internal/sys"
)

// localConfigFile is the config file picked up from the working directory
// if no explicit one is given.
const localConfigFile = "wrenrun.yaml"

// Config is the optional YAML config file. It covers the same settings as
// the flags; flags given explicitly win over the file.
type Config struct {
	SourceDir   string `yaml:"source-dir"`
	Toolchain   string `yaml:"toolchain"`
	QemuBin     string `yaml:"qemu-bin"`
	Capacity    int64  `yaml:"capacity"`
	FSType      string `yaml:"fs-type"`
	InodeSize   int    `yaml:"inode-size"`
	ScratchRoot string `yaml:"scratch-root"`

	// Fixtures maps image paths to host files whose content is written
	// into the assembled image instead of the default fixture. Host
	// paths are resolved relative to the working directory.
	Fixtures map[string]sys.FilePath `yaml:"fixtures"`
}

// loadConfig reads the config file at path. A missing file is an error
// only if explicit is set; the implicit local file is optional.
func loadConfig(path string, explicit bool) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}

		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoConfigFile, path)
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(content, config)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return config, nil
}

// apply copies the settings present in the config onto the spec.
func (c *Config) apply(spec *harness.Spec) error {
	if c.SourceDir != "" {
		spec.SourceDir = c.SourceDir
	}

	if c.Toolchain != "" {
		spec.Toolchain = c.Toolchain
	}

	if c.QemuBin != "" {
		spec.QemuExecutable = c.QemuBin
	}

	if c.Capacity != 0 {
		spec.ImageCapacity = c.Capacity
	}

	if c.FSType != "" {
		spec.FSType = c.FSType
	}

	if c.InodeSize != 0 {
		spec.InodeSize = c.InodeSize
	}

	if c.ScratchRoot != "" {
		spec.ScratchRoot = c.ScratchRoot
	}

	if len(c.Fixtures) > 0 {
		fixtures, err := c.fixtureSet()
		if err != nil {
			return err
		}

		spec.Fixtures = fixtures
	}

	return nil
}

// fixtureSet loads the configured fixture files from disk.
func (c *Config) fixtureSet() (image.FixtureSet, error) {
	fixtures := make(image.FixtureSet, len(c.Fixtures))

	for imagePath, hostPath := range c.Fixtures {
		err := hostPath.Check()
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", imagePath, err)
		}

		content, err := os.ReadFile(hostPath.String())
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", imagePath, err)
		}

		fixtures[imagePath] = content
	}

	return fixtures, nil
}
