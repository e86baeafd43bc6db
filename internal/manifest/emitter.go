// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/mavensync/mavensync/internal/rewrite"
)

const (
	// DefaultGenerator is the generator executable looked up on PATH.
	DefaultGenerator = "pom2bp"
	// DefaultFile is the manifest file name written at the working tree root.
	DefaultFile = "Android.bp"
	// DefaultSDKVersion is the target SDK passed to the generator.
	DefaultSDKVersion = 31
	// DefaultMinSDKVersion is the default minimum SDK passed to the generator.
	DefaultMinSDKVersion = 24

	stderrTailLines = 20
)

// DefaultExcludes names modules the generator must skip. Both depend on a
// library that is not available in the target tree.
var DefaultExcludes = []string{
	"android-arch-room-migration",
	"android-arch-room-testing",
}

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// LookPathFunc resolves an executable name on PATH.
	LookPathFunc func(file string) (string, error)

	// Options are the fixed generator settings.
	Options struct {
		Generator     string
		File          string
		SDKVersion    int
		MinSDKVersion int
		StaticDeps    bool
		Excludes      []string
	}

	// Emitter runs the manifest generator.
	Emitter struct {
		opts        Options
		rules       *rewrite.RuleSet
		execCommand ExecCommandFunc
		lookPath    LookPathFunc
	}

	// EmitterOption configures an Emitter.
	EmitterOption func(*Emitter)
)

// DefaultOptions returns the stock generator settings.
func DefaultOptions() Options {
	return Options{
		Generator:     DefaultGenerator,
		File:          DefaultFile,
		SDKVersion:    DefaultSDKVersion,
		MinSDKVersion: DefaultMinSDKVersion,
		StaticDeps:    true,
		Excludes:      append([]string(nil), DefaultExcludes...),
	}
}

// WithExecCommand replaces exec.CommandContext.
func WithExecCommand(fn ExecCommandFunc) EmitterOption {
	return func(e *Emitter) {
		e.execCommand = fn
	}
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn LookPathFunc) EmitterOption {
	return func(e *Emitter) {
		e.lookPath = fn
	}
}

// New creates an Emitter. Empty generator and file names fall back to the
// defaults.
func New(rules *rewrite.RuleSet, opts Options, options ...EmitterOption) *Emitter {
	if opts.Generator == "" {
		opts.Generator = DefaultGenerator
	}
	if opts.File == "" {
		opts.File = DefaultFile
	}
	e := &Emitter{
		opts:        opts,
		rules:       rules,
		execCommand: exec.CommandContext,
		lookPath:    exec.LookPath,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Generator returns the configured generator command line.
func (e *Emitter) Generator() string { return e.opts.Generator }

// File returns the manifest file name.
func (e *Emitter) File() string { return e.opts.File }

// LookPath resolves the generator executable on PATH. The returned error
// wraps ErrGeneratorNotFound.
func (e *Emitter) LookPath() (string, error) {
	name, _, err := e.command()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneratorNotFound, err)
	}
	path, err := e.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrGeneratorNotFound, name, err)
	}
	return path, nil
}

// command splits the generator setting into an executable and its leading
// arguments. The setting is a shell-quoted command line; environment
// variables are expanded.
func (e *Emitter) command() (name string, args []string, err error) {
	fields, err := shell.Fields(e.opts.Generator, os.Getenv)
	if err != nil {
		return "", nil, fmt.Errorf("parse generator command %q: %w", e.opts.Generator, err)
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty generator command %q", e.opts.Generator)
	}
	return fields[0], fields[1:], nil
}

// Args returns the generator arguments, ending with "." for the working tree.
//
// Name rewrites come first in RuleSet.Keys order, then dependency rewrites in
// source order. Per-rule flags follow the same key order so the argument list
// is stable across runs.
func (e *Emitter) Args() []string {
	args := []string{
		"-sdk-version", strconv.Itoa(e.opts.SDKVersion),
		"-default-min-sdk-version", strconv.Itoa(e.opts.MinSDKVersion),
	}
	if e.opts.StaticDeps {
		args = append(args, "-static-deps")
	}

	keys := e.rules.Keys()
	for _, key := range keys {
		rule, _ := e.rules.Lookup(key)
		args = append(args, rewriteFlag(key.String(), rule.Name))
	}
	for _, dep := range e.rules.DependencyRewrites() {
		args = append(args, rewriteFlag(dep.From, dep.To))
	}

	for _, key := range keys {
		rule, _ := e.rules.Lookup(key)
		if len(rule.ExtraStaticLibs) > 0 {
			args = append(args, "-extra-static-libs="+rule.Name+"="+strings.Join(rule.ExtraStaticLibs, ","))
		}
	}
	for _, key := range keys {
		rule, _ := e.rules.Lookup(key)
		if len(rule.OptionalUsesLibs) > 0 {
			args = append(args, "-optional-uses-libs="+rule.Name+"="+strings.Join(rule.OptionalUsesLibs, ","))
		}
	}
	for _, key := range keys {
		if rule, _ := e.rules.Lookup(key); rule.Host {
			args = append(args, "-host="+key.String())
		}
	}
	for _, key := range keys {
		if rule, _ := e.rules.Lookup(key); rule.HostAndDevice {
			args = append(args, "-host-and-device="+key.String())
		}
	}

	for _, ex := range e.opts.Excludes {
		args = append(args, "-exclude="+ex)
	}
	return append(args, ".")
}

// Emit runs the generator inside workingDir and writes its standard output to
// the manifest file there. It returns the manifest path. On failure the
// partial manifest is removed and an *ExternalToolError is returned.
func (e *Emitter) Emit(ctx context.Context, workingDir string) (path string, err error) {
	manifestPath := filepath.Join(workingDir, e.opts.File)
	f, err := os.Create(manifestPath)
	if err != nil {
		return "", fmt.Errorf("create manifest %s: %w", manifestPath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close manifest %s: %w", manifestPath, closeErr)
		}
		if err != nil {
			_ = os.Remove(manifestPath) // best-effort; the working tree is discarded on failure anyway
			path = ""
		}
	}()

	name, prefix, err := e.command()
	if err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd := e.execCommand(ctx, name, append(prefix, e.Args()...)...)
	cmd.Dir = workingDir
	cmd.Stdout = f
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		toolErr := &ExternalToolError{
			Tool:     name,
			ExitCode: -1,
			Stderr:   lastLines(stderr.String(), stderrTailLines),
			Err:      runErr,
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			toolErr.ExitCode = exitErr.ExitCode()
		}
		return "", toolErr
	}
	return manifestPath, nil
}

func rewriteFlag(from, to string) string {
	return "-rewrite=^" + from + "$=" + to
}
