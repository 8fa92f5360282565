package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointTile builds a level 2 tile of generic points with a FEAT_CODE each.
func pointTile(name string, xOrig, yOrig int, pts ...[2]int) string {
	pad := func(s string, n int) string { return s + strings.Repeat(" ", n-len(s)) }
	lines := []string{
		"01" + strings.Repeat(" ", 54) + "2",
		"02" + pad("TEST_PRODUCT", 20) + strings.Repeat(" ", 56) + pad("1.0", 20),
		"40FC004A4   FEAT_CODE\\",
		"07" + pad(name, 10) + "  " +
			fmt.Sprintf("%5d %10d%5d %10d%10d%10d", 6, 1000, 6, 1000, xOrig, yOrig) +
			strings.Repeat(" ", 30) + fmt.Sprintf("%10d%10d", 1000, 1000),
	}
	for i, p := range pts {
		id := i + 1
		lines = append(lines,
			fmt.Sprintf("15%06d%06d01%06d", id, id, id),
			fmt.Sprintf("21%06d1%04d%06d%06d", id, 1, p[0], p[1]),
			fmt.Sprintf("14%06dFC%04d", id, id),
		)
	}
	lines = append(lines, "99")
	return strings.Join(lines, "0%\r\n") + "0%\r\n"
}

func writeTiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ntf"),
		[]byte(pointTile("A", 0, 0, [2]int{100, 100}, [2]int{600, 600})), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.ntf"),
		[]byte(pointTile("B", 1000, 0, [2]int{100, 100})), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := makeRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestInfo tests the metadata report
func TestInfo(t *testing.T) {
	dir := writeTiles(t)

	out, err := run(t, "info", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Tile:       A")
	assert.Contains(t, out, "Tile:       B")
	assert.Contains(t, out, "Level:      2")
	assert.Contains(t, out, "Extent:     (1000.00, 0.00) - (2000.00, 1000.00)")
	assert.Contains(t, out, "Feature ids: 3-3")
	assert.Contains(t, out, "GENERIC_POINT")
}

// TestFeatures tests listing with a bounding box and class filter
func TestFeatures(t *testing.T) {
	dir := writeTiles(t)

	out, err := run(t, "features", "--bbox", "0,0,500,500", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "1\tA\tGENERIC_POINT\tPoint"), lines[0])
	assert.Contains(t, lines[0], "FEAT_CODE=0001")

	out, err = run(t, "features", "--class", "GENERIC_LINE", filepath.Join(dir, "a.ntf"))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

// TestGeoJSON tests conversion to a file
func TestGeoJSON(t *testing.T) {
	dir := writeTiles(t)
	output := filepath.Join(t.TempDir(), "out.geojson")

	_, err := run(t, "geojson", "-o", output, "--base-fid", "10", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, orb.Point{1100, 100}, fc.Features[2].Geometry)
	assert.Equal(t, 13.0, fc.Features[2].Properties.MustFloat64("fid"))
}

// TestValidate tests that validation only drops geometry when asked
func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outside.ntf")
	require.NoError(t, os.WriteFile(path, []byte(pointTile("A", 0, 0, [2]int{5000, 5000})), 0o644))

	out, err := run(t, "features", path)
	require.NoError(t, err)
	assert.Contains(t, out, "GENERIC_POINT\tPoint")

	out, err = run(t, "info", "--validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Issues:     1")
	assert.Contains(t, out, "geometry 1 dropped")
}

// TestBadArguments tests flag and input errors
func TestBadArguments(t *testing.T) {
	dir := writeTiles(t)

	_, err := run(t, "info", "--traversal", "sideways", dir)
	assert.Error(t, err)

	_, err = run(t, "features", "--bbox", "1,2,3", dir)
	assert.Error(t, err)

	_, err = run(t, "info", filepath.Join(dir, "missing.ntf"))
	assert.Error(t, err)

	_, err = run(t, "info")
	assert.Error(t, err)
}
