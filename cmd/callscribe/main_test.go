package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_CONNECTION_STRING", "")
	t.Setenv("GEMINI_API_KEY", "")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	missingEnv := filepath.Join(t.TempDir(), "missing.env")
	cmd.SetArgs(append([]string{"--env-file", missingEnv}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"sql", "chat", "process", "serve"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "process")
}

func TestProcessCommand_Args(t *testing.T) {
	_, err := runCLI(t, "process")
	require.Error(t, err)

	_, err = runCLI(t, "process", "a", "b")
	require.Error(t, err)
}

func TestProcessCommand_InvalidCallID(t *testing.T) {
	_, err := runCLI(t, "process", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid call id")
}

func TestProcessCommand_RequiresDatabase(t *testing.T) {
	_, err := runCLI(t, "process", "6f1c2d3e-0000-4000-8000-000000000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestSQLCommand_RequiresDatabase(t *testing.T) {
	_, err := runCLI(t, "sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestSQLCommand_RejectsArgs(t *testing.T) {
	_, err := runCLI(t, "sql", "SELECT 1")
	require.Error(t, err)
}

func TestChatCommand_RequiresAPIKey(t *testing.T) {
	_, err := runCLI(t, "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestServeCommand_RequiresDatabase(t *testing.T) {
	_, err := runCLI(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestSetupLogging(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for level, want := range cases {
		var buf bytes.Buffer
		logger := setupLogging(level, &buf)
		assert.True(t, logger.Enabled(context.Background(), want), level)
		if want > slog.LevelDebug {
			assert.False(t, logger.Enabled(context.Background(), want-4), level)
		}
	}
}

func TestSetupLogging_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogging("info", &buf)
	logger.Info("hello", "call_id", "c-1")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"call_id":"c-1"`)
}
