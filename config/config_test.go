package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql/config"
)

func TestDefaultHasBaselineEpsilonAndNoRowCap(t *testing.T) {
	require := require.New(t)

	cfg := config.Default()
	require.Equal(0, cfg.MaxResultRows)
	require.Equal(config.DefaultEpsilon, cfg.EpsilonAbs)
	require.Equal(config.DefaultEpsilon, cfg.EpsilonRel)
}

func TestLoadYAMLOverridesProvidedFields(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "jsonql.yaml")
	require.NoError(os.WriteFile(path, []byte("max_result_rows: 100\nepsilon_abs: 0.01\n"), 0o644))

	cfg, err := config.LoadYAML(path)
	require.NoError(err)
	require.Equal(100, cfg.MaxResultRows)
	require.Equal(0.01, cfg.EpsilonAbs)
	require.Equal(config.DefaultEpsilon, cfg.EpsilonRel, "unset epsilon_rel falls back to the spec default")
}

func TestLoadYAMLExplicitZeroEpsilonStillBackfillsToDefault(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "jsonql.yaml")
	require.NoError(os.WriteFile(path, []byte("epsilon_abs: 0\nepsilon_rel: 0\n"), 0o644))

	cfg, err := config.LoadYAML(path)
	require.NoError(err)
	require.Equal(config.DefaultEpsilon, cfg.EpsilonAbs)
	require.Equal(config.DefaultEpsilon, cfg.EpsilonRel)
}

func TestLoadYAMLMissingFileErrors(t *testing.T) {
	require := require.New(t)

	_, err := config.LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(err)
}
