package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model_metadata.json")
	body := `{
		"input_shape": [1, 3, 224, 224],
		"output_shape": [1, 1001],
		"model_name": "mobilenet_v2",
		"image_size": 224
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 224, 224}, meta.InputShape)
	assert.Equal(t, []int64{1, 1001}, meta.OutputShape)
	assert.Equal(t, "mobilenet_v2", meta.ModelName)
	assert.Equal(t, 224, meta.ImageSize)
}

func TestLoadMetadataMissingFile(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadMetadataBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadMetadata(path)
	assert.Error(t, err)
}
