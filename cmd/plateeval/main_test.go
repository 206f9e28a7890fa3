package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGroundTruth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ground_truth.csv")
	contents := "image,ground_truth\ncar_001.jpg,B1234ABC\ncar_002.jpg, X99Y \n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	gt := loadGroundTruth(path)
	assert.Equal(t, "B1234ABC", gt["car_001.jpg"])
	assert.Equal(t, "X99Y", gt["car_002.jpg"], "values are trimmed")
	assert.Len(t, gt, 2)
}

func TestLoadGroundTruthColumnOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ground_truth.csv")
	contents := "ground_truth,image\nB1234ABC,car_001.jpg\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	gt := loadGroundTruth(path)
	assert.Equal(t, "B1234ABC", gt["car_001.jpg"])
}

func TestLoadGroundTruthMissingFile(t *testing.T) {
	gt := loadGroundTruth(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Empty(t, gt)
}

func TestLoadGroundTruthBadHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ground_truth.csv")
	require.NoError(t, os.WriteFile(path, []byte("filename,plate\na.jpg,B1A\n"), 0o644))

	gt := loadGroundTruth(path)
	assert.Empty(t, gt)
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "c.tiff", "notes.txt", "d.gif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))

	names, err := collectImages(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.jpg", "b.PNG", "c.tiff"}, names)
}
