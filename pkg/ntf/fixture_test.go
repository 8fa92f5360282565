package ntf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pad(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

// tilePoint is one generic point of a test tile, in coordinates relative to
// the tile origin.
type tilePoint struct {
	x, y int
	code string
}

// tileFile builds a level 2 volume holding one 1000 by 1000 tile of generic
// points, each with a FEAT_CODE attribute.
func tileFile(name string, xOrig, yOrig int, points ...tilePoint) string {
	lines := []string{
		"01" + strings.Repeat(" ", 54) + "2",
		"02" + pad("TEST_PRODUCT", 20) + strings.Repeat(" ", 56) + pad("1.0", 20),
		"40FC004A4   FEAT_CODE\\",
		"07" + pad(name, 10) + "  " +
			fmt.Sprintf("%5d %10d%5d %10d", 6, 1000, 6, 1000) +
			fmt.Sprintf("%10d%10d", xOrig, yOrig) +
			strings.Repeat(" ", 30) +
			fmt.Sprintf("%10d%10d", 1000, 1000),
	}
	for i, p := range points {
		id := i + 1
		lines = append(lines,
			fmt.Sprintf("15%06d%06d01%06d", id, id, id),
			fmt.Sprintf("21%06d1%04d%06d%06d", id, 1, p.x, p.y),
			fmt.Sprintf("14%06dFC%s", id, pad(p.code, 4)),
		)
	}
	lines = append(lines, "99")
	for i := range lines {
		lines[i] += "0%"
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

// squareTile has two points in the south west corner of the British
// National Grid square TQ3080.
func squareTile() string {
	return tileFile("TQ3080", 530000, 180000,
		tilePoint{100, 100, "0001"},
		tilePoint{900, 900, "0002"},
	)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
