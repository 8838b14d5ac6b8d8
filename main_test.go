package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtm0/patchgrid/internal/config"
	"github.com/rtm0/patchgrid/internal/grid"
)

func execute(t *testing.T, args ...string) (*slog.LevelVar, error) {
	t.Helper()
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	root := newRootCmd(slog.New(slog.NewTextHandler(io.Discard, nil)), level)
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return level, root.ExecuteContext(context.Background())
}

func TestMissingInputIsUsageError(t *testing.T) {
	for _, sub := range []string{"sum", "grid"} {
		level, err := execute(t, sub, "-v")
		assert.ErrorIs(t, err, config.ErrNoInput, sub)
		assert.Equal(t, slog.LevelInfo, level.Level(), sub)
	}
}

func TestVerboseFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patchgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbose: true\n"), 0o644))
	missing := filepath.Join(t.TempDir(), "missing.nc")

	level, err := execute(t, "sum", "--config", path, missing)
	require.Error(t, err)
	assert.Equal(t, slog.LevelInfo, level.Level())

	level, err = execute(t, "sum", "--config", path, "--verbose=false", missing)
	require.Error(t, err)
	assert.Equal(t, slog.LevelWarn, level.Level())
}

func TestSumIgnoresRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patchgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: atlantis\n"), 0o644))

	_, err := execute(t, "sum", "--config", path, filepath.Join(t.TempDir(), "missing.nc"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, grid.ErrUnknownRegion)
}

func TestUnknownRegionFlag(t *testing.T) {
	_, err := execute(t, "grid", "--region", "atlantis", "in.nc")
	assert.ErrorIs(t, err, grid.ErrUnknownRegion)
}

func TestRegionFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patchgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: atlantis\n"), 0o644))

	_, err := execute(t, "grid", "--config", path, "in.nc")
	assert.ErrorIs(t, err, grid.ErrUnknownRegion)

	// The flag wins over the file.
	_, err = execute(t, "grid", "--config", path, "--region", "global", filepath.Join(t.TempDir(), "missing.nc"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, grid.ErrUnknownRegion)
}

func TestTooManyArguments(t *testing.T) {
	_, err := execute(t, "sum", "a.nc", "b.nc")
	assert.Error(t, err)
}
