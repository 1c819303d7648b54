package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geomeasure/internal/config"
)

func TestRootFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", "a.toml", "--log-file", "x.log", "-w"}))
	v, err := cmd.Flags().GetString("config")
	require.NoError(t, err)
	assert.Equal(t, "a.toml", v)
	w, err := cmd.Flags().GetBool("watch")
	require.NoError(t, err)
	assert.True(t, w)
}

func TestRootRejectsExtraArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"a.geojson", "b.geojson"})
	assert.Error(t, cmd.Execute())
}

func TestSetupDefaults(t *testing.T) {
	opts, cleanup, err := setup(rootFlags{}, []string{"route.wkt"})
	require.NoError(t, err)
	defer cleanup()
	assert.Len(t, opts, 3)
}

func TestSetupBadConfig(t *testing.T) {
	_, _, err := setup(rootFlags{config: "settings.ini"}, nil)
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
}

func TestSetupGridAndWatch(t *testing.T) {
	dir := t.TempDir()
	grid := filepath.Join(dir, "dem.asc")
	require.NoError(t, os.WriteFile(grid, []byte(
		"ncols 2\nnrows 2\nxllcorner 7\nyllcorner 46\ncellsize 0.5\n1 2\n3 4\n"), 0o644))
	cfgPath := filepath.Join(dir, "geomeasure.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[elevation]\ngrid = \""+filepath.ToSlash(grid)+"\"\n"), 0o644))

	opts, cleanup, err := setup(rootFlags{config: cfgPath, logFile: filepath.Join(dir, "g.log"), watch: true}, nil)
	require.NoError(t, err)
	defer cleanup()
	assert.Len(t, opts, 4)
}

func TestSetupMissingGrid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "geomeasure.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("elevation:\n  grid: /nonexistent/dem.asc\n"), 0o644))
	_, _, err := setup(rootFlags{config: cfgPath}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
