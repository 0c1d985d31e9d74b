package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/redislua/compiler"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(args ...string) error {
	return newCommand("test").Run(context.Background(), append([]string{"redislua", "-C"}, args...))
}

func TestEmit_MissingArgument(t *testing.T) {
	assert.ErrorContains(t, run("emit"), "usage: redislua emit")
}

func TestEmit_ScriptErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "demo.go", "package demo\n\n//redislua:script S\nconst s = `return foo`\n")
	assert.ErrorIs(t, run("emit", file), compiler.ErrDiagnostics)
}

func TestEmit_NoScripts(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "demo.go", "package demo\n")
	assert.ErrorContains(t, run("emit", file), "no embedded scripts found")
}

func TestEmit_ConfigAllowsRule(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "demo.go", "package demo\n\n//redislua:script S\nconst s = `return foo`\n")
	cfg := writeFile(t, dir, "lint.toml", "[rules]\nundefined_variable = \"allow\"\n")
	assert.NoError(t, run("--config", cfg, "emit", file))
}

func TestNewCompiler_BadConfig(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "demo.go", "package demo\n")
	cfg := writeFile(t, dir, "lint.toml", "[rules\n")
	assert.ErrorContains(t, run("--config", cfg, "emit", file), "parsing lint config")

	assert.ErrorContains(t, run("--config", filepath.Join(dir, "missing.toml"), "emit", file), "reading config")
}

func TestNewCompiler_InvalidRules(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "demo.go", "package demo\n\n//redislua:script S\nconst s = `return 1`\n")

	cfg := writeFile(t, dir, "unknown.toml", "[rules]\nno_such_rule = \"deny\"\n")
	err := run("--config", cfg, "emit", file)
	assert.ErrorContains(t, err, `unknown lint rule "no_such_rule"`)
	assert.ErrorContains(t, err, cfg)

	cfg = writeFile(t, dir, "level.toml", "[rules]\nunused_variable = \"loud\"\n")
	for _, sub := range []string{"emit", "check", "generate"} {
		assert.ErrorContains(t, run("--config", cfg, sub, file), `invalid level "loud"`, sub)
	}
}

func TestEmit_WarningsAsErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "demo.go", "package demo\n\n//redislua:script S\nconst s = `local unused = 1 return 2`\n")
	assert.NoError(t, run("emit", file))
	assert.ErrorIs(t, run("--warnings-as-errors", "emit", file), compiler.ErrDiagnostics)
}

func TestDoc_UnknownSymbol(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "demo.go", "package demo\n\n//redislua:string S\nconst s = `return 1`\n")
	assert.NoError(t, run("doc", file))
	assert.NoError(t, run("doc", file, "S"))
	assert.ErrorContains(t, run("doc", file, "Missing"), "no script named Missing")
}
