package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPassesValidationWithRoots(t *testing.T) {
	cfg := Default()
	cfg.Corpus.Roots = []string{t.TempDir()}
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Corpus.Roots = []string{"."}
	cfg.Server.Port = 0
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsNoRoots(t *testing.T) {
	cfg := Default()
	assert.Error(t, Validate(cfg))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.kdl"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadKDLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	kdlPath := filepath.Join(dir, ".corpusd.kdl")
	content := `
server {
    port 9090
    max_active_clients 8
}
corpus {
    root "docs"
    exclude {
        "vendor/**"
    }
}
index {
    ingest_workers 2
    refresh_interval_sec 30
}
`
	require.NoError(t, os.WriteFile(kdlPath, []byte(content), 0o644))

	cfg, err := Load(kdlPath)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Server.MaxActiveClients)
	assert.Equal(t, 2, cfg.Index.IngestWorkers)
	assert.Equal(t, 30, cfg.Index.RefreshIntervalSec)
	require.Len(t, cfg.Corpus.Roots, 1)
	assert.Equal(t, []string{"vendor/**"}, cfg.Corpus.Exclude)
}
