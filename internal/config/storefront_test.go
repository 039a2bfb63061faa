package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorefrontConfigHolderZeroValueFallsBackToDefaults(t *testing.T) {
	var holder StorefrontConfigHolder
	assert.Equal(t, DefaultStorefrontConfig(), holder.Get())

	var nilHolder *StorefrontConfigHolder
	assert.Equal(t, 50, nilHolder.Get().Logs.PageSize)
}

func TestNewStorefrontConfigHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`storefront:
  logs:
    pageSize: 25
    maxPageSize: 100
  sizes:
    maxLabelLength: 6
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "storefront.yml"), content, 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	holder, err := NewStorefrontConfigHolder()
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 25, cfg.Logs.PageSize)
	assert.Equal(t, 100, cfg.Logs.MaxPageSize)
	assert.Equal(t, 6, cfg.Sizes.MaxLabelLength)
	assert.Equal(t, int64(10<<20), cfg.Media.MaxUploadBytes)
}

func TestValidateStorefrontConfigRejectsInconsistentPaging(t *testing.T) {
	cfg := DefaultStorefrontConfig()
	cfg.Logs.MaxPageSize = 10
	assert.Error(t, validateStorefrontConfig(cfg))
}
