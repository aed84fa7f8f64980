// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/wren-os/wrenrun/internal/harness"
	"github.com/wren-os/wrenrun/internal/qemu"
	"github.com/wren-os/wrenrun/internal/sys"
)

// Set on build.
var version = "dev"

type flags struct {
	name string

	configPath  string
	sourceDir   string
	toolchain   string
	triple      sys.Triple
	qemuBin     string
	imageKind   harness.ImageKind
	capacity    int64
	fsType      string
	inodeSize   int
	entropy     bool
	capture     bool
	keepScratch bool
	scratchRoot string

	variant string

	versionFlag bool
	debugFlag   bool
	flagSet     *flag.FlagSet
}

func newFlags(name string, output io.Writer) *flags {
	f := &flags{name: name}
	f.initFlagset(output)

	return f
}

func (f *flags) initFlagset(output io.Writer) {
	fsName := f.name + " [flags...] {kernel|program|fs|rawfs}"
	fs := flag.NewFlagSet(fsName, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(
		&f.configPath,
		"config",
		"",
		"config file to read instead of the local "+localConfigFile,
	)

	fs.StringVar(
		&f.sourceDir,
		"source",
		".",
		"root of the operating system source tree",
	)

	fs.StringVar(
		&f.toolchain,
		"toolchain",
		"",
		"build tool to invoke instead of cargo",
	)

	fs.Var(
		&f.triple,
		"triple",
		"target triple to compile for",
	)

	fs.StringVar(
		&f.qemuBin,
		"qemu-bin",
		"",
		"QEMU binary to use",
	)

	fs.Var(
		&f.imageKind,
		"image",
		"storage image kind: none, fs, raw",
	)

	fs.Int64Var(
		&f.capacity,
		"capacity",
		0,
		"storage image capacity in bytes",
	)

	fs.StringVar(
		&f.fsType,
		"fs-type",
		"",
		"filesystem type for fs images",
	)

	fs.IntVar(
		&f.inodeSize,
		"inode-size",
		0,
		"inode size in bytes for fs images",
	)

	fs.BoolVar(
		&f.entropy,
		"entropy",
		false,
		"attach a virtio entropy device to the guest",
	)

	fs.BoolVar(
		&f.capture,
		"capture",
		false,
		"pipe guest console output instead of binding the terminal",
	)

	fs.BoolVar(
		&f.keepScratch,
		"keep-scratch",
		false,
		"do not remove the scratch space once done. Intended for"+
			" debugging. The path is printed on stderr",
	)

	fs.StringVar(
		&f.scratchRoot,
		"scratch-root",
		"",
		"directory to create scratch spaces under",
	)

	fs.BoolVar(
		&f.debugFlag,
		"debug",
		false,
		"enable debug output",
	)

	fs.BoolVar(
		&f.versionFlag,
		"version",
		false,
		"show version and exit",
	)

	f.flagSet = fs
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) debug() bool {
	return f.debugFlag
}

func (f *flags) printVersionInformation() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	fmt.Fprintf(f.flagSet.Output(), "%s: %s\n\n", f.name, version)
	fmt.Fprintln(f.flagSet.Output(), buildInfo.String())
}

func (f *flags) parseArgs(args []string) error {
	if err := f.flagSet.Parse(args); err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using
	// [flag.ErrHelp] the main binary is supposed to return with a non
	// error exit code.
	if f.versionFlag {
		f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: flag.ErrHelp}
	}

	positionalArgs := f.flagSet.Args()

	if len(positionalArgs) < 1 {
		return f.fail("no pipeline variant given", nil)
	}

	if len(positionalArgs) > 1 {
		return f.fail("more than one pipeline variant given", nil)
	}

	f.variant = positionalArgs[0]

	return nil
}

// spec builds the run spec: variant preset first, then the config file,
// then any flag the user set explicitly.
func (f *flags) spec() (harness.Spec, error) {
	spec, err := harness.VariantSpec(f.variant, f.sourceDir)
	if err != nil {
		return harness.Spec{}, f.fail("pipeline variant", err)
	}

	config, err := loadConfig(f.effectiveConfigPath(), f.configPath != "")
	if err != nil {
		return harness.Spec{}, err
	}

	err = config.apply(&spec)
	if err != nil {
		return harness.Spec{}, err
	}

	f.apply(&spec)

	return spec, nil
}

func (f *flags) effectiveConfigPath() string {
	if f.configPath != "" {
		return f.configPath
	}

	return localConfigFile
}

// apply copies explicitly set flags onto the spec, overriding both the
// variant preset and the config file.
func (f *flags) apply(spec *harness.Spec) {
	f.flagSet.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "source":
			spec.SourceDir = f.sourceDir
		case "toolchain":
			spec.Toolchain = f.toolchain
		case "triple":
			spec.KernelTarget.Triple = f.triple
			spec.ProgramTarget.Triple = f.triple
		case "qemu-bin":
			spec.QemuExecutable = f.qemuBin
		case "image":
			spec.ImageKind = f.imageKind
		case "capacity":
			spec.ImageCapacity = f.capacity
		case "fs-type":
			spec.FSType = f.fsType
		case "inode-size":
			spec.InodeSize = f.inodeSize
		case "entropy":
			spec.EntropyDevice = f.entropy
		case "keep-scratch":
			spec.KeepScratch = f.keepScratch
		case "scratch-root":
			spec.ScratchRoot = f.scratchRoot
		}
	})

	if f.capture {
		spec.Console = qemu.ConsoleCaptured
	}
}
