// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mavensync/mavensync/internal/maven"
	"github.com/mavensync/mavensync/internal/rewrite"
	"github.com/mavensync/mavensync/internal/testutil"
)

func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }

func testRules() *rewrite.RuleSet {
	return rewrite.NewRuleSet(map[maven.Key]rewrite.Rule{
		"com.google.android.material:material": {
			Name:            "com.google.android.material_material",
			ExtraStaticLibs: []string{"androidx.annotation_annotation-experimental", "androidx-constraintlayout_constraintlayout"},
		},
		"androidx.window:window-extensions": {
			Name:             "androidx.window_window-extensions",
			OptionalUsesLibs: []string{"androidx.window.extensions", "androidx.window.sidecar"},
		},
		"com.android.tools.lint:lint-api": {Host: true},
		"kotlinx-coroutines-core":         {Name: "kotlinx_coroutines", HostAndDevice: true},
	}, []rewrite.DependencyRewrite{
		{From: "kotlin-stdlib", To: "kotlin-stdlib"},
		{From: "auto-value-annotations", To: "auto_value_annotations"},
	})
}

func TestEmitter_Args(t *testing.T) {
	t.Parallel()

	e := New(testRules(), DefaultOptions())
	want := []string{
		"-sdk-version", "31",
		"-default-min-sdk-version", "24",
		"-static-deps",
		"-rewrite=^androidx.window:window-extensions$=androidx.window_window-extensions",
		"-rewrite=^com.android.tools.lint:lint-api$=com.android.tools.lint_lint-api",
		"-rewrite=^com.google.android.material:material$=com.google.android.material_material",
		"-rewrite=^kotlinx-coroutines-core$=kotlinx_coroutines",
		"-rewrite=^auto-value-annotations$=auto_value_annotations",
		"-rewrite=^kotlin-stdlib$=kotlin-stdlib",
		"-extra-static-libs=com.google.android.material_material=androidx-constraintlayout_constraintlayout,androidx.annotation_annotation-experimental",
		"-optional-uses-libs=androidx.window_window-extensions=androidx.window.extensions,androidx.window.sidecar",
		"-host=com.android.tools.lint:lint-api",
		"-host-and-device=kotlinx-coroutines-core",
		"-exclude=android-arch-room-migration",
		"-exclude=android-arch-room-testing",
		".",
	}

	if got := e.Args(); !slices.Equal(got, want) {
		t.Errorf("Args() mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestEmitter_ArgsWithoutStaticDeps(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.StaticDeps = false
	opts.Excludes = nil
	opts.SDKVersion = 34
	e := New(rewrite.NewRuleSet(nil, nil), opts)

	want := []string{"-sdk-version", "34", "-default-min-sdk-version", "24", "."}
	if got := e.Args(); !slices.Equal(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

func TestEmitter_Emit(t *testing.T) {
	t.Parallel()

	rec := testutil.NewCommandRecorder()
	rec.Stdout = "// Automatically generated\njava_import {}\n"
	e := New(testRules(), DefaultOptions(), WithExecCommand(rec.CommandFunc(t)))

	dir := t.TempDir()
	path, err := e.Emit(context.Background(), dir)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if path != filepath.Join(dir, DefaultFile) {
		t.Errorf("Emit() path = %q", path)
	}
	if got := testutil.MustReadFile(t, path); got != rec.Stdout {
		t.Errorf("manifest = %q, want %q", got, rec.Stdout)
	}

	rec.AssertInvocationCount(t, 1)
	inv := rec.LastInvocation()
	if inv.Name != DefaultGenerator {
		t.Errorf("generator = %q, want %q", inv.Name, DefaultGenerator)
	}
	if !slices.Equal(inv.Args, e.Args()) {
		t.Errorf("generator args = %q, want %q", inv.Args, e.Args())
	}
}

func TestEmitter_EmitFailure(t *testing.T) {
	t.Parallel()

	rec := testutil.NewCommandRecorder()
	rec.ExitCode = 2
	rec.Stdout = "android_library_import {\n"
	rec.Stderr = "error: bad pom\n"
	e := New(testRules(), DefaultOptions(), WithExecCommand(rec.CommandFunc(t)))

	dir := t.TempDir()
	path, err := e.Emit(context.Background(), dir)
	if path != "" {
		t.Errorf("Emit() path = %q, want empty on failure", path)
	}
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("Emit() error = %v, want ErrExternalTool", err)
	}

	var toolErr *ExternalToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("Emit() error = %T, want *ExternalToolError", err)
	}
	if toolErr.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", toolErr.ExitCode)
	}
	if toolErr.Stderr != "error: bad pom" {
		t.Errorf("Stderr = %q", toolErr.Stderr)
	}
	testutil.AssertNotExists(t, filepath.Join(dir, DefaultFile))
}

func TestEmitter_LookPath(t *testing.T) {
	t.Parallel()

	found := New(nil, DefaultOptions(), WithLookPath(func(file string) (string, error) {
		return "/opt/bin/" + file, nil
	}))
	if path, err := found.LookPath(); err != nil || path != "/opt/bin/pom2bp" {
		t.Errorf("LookPath() = %q, %v", path, err)
	}

	missing := New(nil, DefaultOptions(), WithLookPath(func(string) (string, error) {
		return "", errors.New("not found")
	}))
	if _, err := missing.LookPath(); !errors.Is(err, ErrGeneratorNotFound) {
		t.Errorf("LookPath() error = %v, want ErrGeneratorNotFound", err)
	}
}

func TestEmitter_GeneratorCommandLine(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Generator = `python3 "tools/pom 2 bp.py" --strict`

	var looked string
	rec := testutil.NewCommandRecorder()
	e := New(testRules(), opts,
		WithExecCommand(rec.CommandFunc(t)),
		WithLookPath(func(file string) (string, error) {
			looked = file
			return "/usr/bin/" + file, nil
		}))

	if _, err := e.LookPath(); err != nil || looked != "python3" {
		t.Fatalf("LookPath() looked up %q, err = %v", looked, err)
	}

	if _, err := e.Emit(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	inv := rec.LastInvocation()
	if inv.Name != "python3" {
		t.Errorf("executable = %q, want python3", inv.Name)
	}
	if !inv.HasArgs("tools/pom 2 bp.py", "--strict", "-sdk-version") {
		t.Errorf("args = %q", inv.Args)
	}
}

func TestEmitter_GeneratorCommandExpandsEnv(t *testing.T) {
	t.Setenv("MAVENSYNC_TEST_TOOLS", "/opt/tools")

	opts := DefaultOptions()
	opts.Generator = "$MAVENSYNC_TEST_TOOLS/pom2bp"
	var looked string
	e := New(nil, opts, WithLookPath(func(file string) (string, error) {
		looked = file
		return file, nil
	}))
	if _, err := e.LookPath(); err != nil {
		t.Fatalf("LookPath() error = %v", err)
	}
	if looked != "/opt/tools/pom2bp" {
		t.Errorf("looked up %q, want /opt/tools/pom2bp", looked)
	}
}

func TestEmitter_GeneratorCommandInvalid(t *testing.T) {
	t.Parallel()

	for _, generator := range []string{`pom2bp "unterminated`, "   "} {
		opts := DefaultOptions()
		opts.Generator = generator
		rec := testutil.NewCommandRecorder()
		e := New(testRules(), opts,
			WithExecCommand(rec.CommandFunc(t)),
			WithLookPath(func(file string) (string, error) { return file, nil }))

		if _, err := e.LookPath(); !errors.Is(err, ErrGeneratorNotFound) {
			t.Errorf("LookPath(%q) error = %v, want ErrGeneratorNotFound", generator, err)
		}

		dir := t.TempDir()
		if _, err := e.Emit(context.Background(), dir); err == nil {
			t.Errorf("Emit(%q) should fail", generator)
		}
		rec.AssertInvocationCount(t, 0)
		testutil.AssertNotExists(t, filepath.Join(dir, DefaultFile))
	}
}

func TestExternalToolError_Message(t *testing.T) {
	t.Parallel()

	err := &ExternalToolError{Tool: "pom2bp", ExitCode: 2}
	if got := err.Error(); got != "pom2bp exited with code 2" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrExternalTool) {
		t.Error("errors.Is(err, ErrExternalTool) = false")
	}
}

func TestLastLines(t *testing.T) {
	t.Parallel()

	if got := lastLines("a\nb\nc\n", 2); got != "b\nc" {
		t.Errorf("lastLines() = %q", got)
	}
	if got := lastLines("", 2); got != "" {
		t.Errorf("lastLines(empty) = %q", got)
	}
}
