package parser

import (
	"fmt"
	"strings"
)

// ntfFile builds NTF test volumes one record per line.
type ntfFile struct {
	lines []string
}

// add appends a single line record
func (b *ntfFile) add(data string) *ntfFile {
	b.lines = append(b.lines, data+"0%")
	return b
}

// addContinued splits data over several lines, each chunk continued by
// the next.
func (b *ntfFile) addContinued(chunks ...string) *ntfFile {
	for i, c := range chunks {
		if i > 0 {
			c = "00" + c
		}
		flag := "1"
		if i == len(chunks)-1 {
			flag = "0"
		}
		b.lines = append(b.lines, c+flag+"%")
	}
	return b
}

func (b *ntfFile) String() string {
	return strings.Join(b.lines, "\r\n") + "\r\n"
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

func vhrData(level int) string {
	return "01" + strings.Repeat(" ", 54) + fmt.Sprintf("%d", level)
}

func dhrData(product, version string) string {
	return "02" + pad(product, 20) + strings.Repeat(" ", 56) + pad(version, 20)
}

func adrData(code string, width int, finter, name string) string {
	return "40" + code + fmt.Sprintf("%03d", width) + pad(finter, 5) + name + "\\"
}

func codeListData(code, finter string, pairs ...string) string {
	return "42" + strings.Repeat(" ", 10) + code + pad(finter, 5) +
		fmt.Sprintf("%03d", len(pairs)/2) + strings.Join(pairs, "\\") + "\\"
}

// shrData builds a section header with XYLEN 6, unit scaling and the given
// origin and extent.
func shrData(tile string, xOrig, yOrig, xMax, yMax int) string {
	return "07" + pad(tile, 10) + "  " +
		fmt.Sprintf("%5d", 6) + " " + fmt.Sprintf("%10d", 1000) +
		fmt.Sprintf("%5d", 6) + " " + fmt.Sprintf("%10d", 1000) +
		fmt.Sprintf("%10d%10d", xOrig, yOrig) +
		strings.Repeat(" ", 30) +
		fmt.Sprintf("%10d%10d", xMax, yMax)
}

func ids(list ...int) string {
	var sb strings.Builder
	for _, id := range list {
		fmt.Fprintf(&sb, "%06d", id)
	}
	return sb.String()
}

func pointData(id, geomID int, attIDs ...int) string {
	return fmt.Sprintf("15%06d%06d%02d", id, geomID, len(attIDs)) + ids(attIDs...)
}

func lineData(id, geomID int, attIDs ...int) string {
	return fmt.Sprintf("23%06d%06d%02d", id, geomID, len(attIDs)) + ids(attIDs...)
}

// geomData builds a 2D geometry record with six digit coordinates.
func geomData(id, gtype int, pts ...[2]int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "21%06d%d%04d", id, gtype, len(pts))
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%06d%06d", p[0], p[1])
	}
	return sb.String()
}

func attData(id int, payload string) string {
	return fmt.Sprintf("14%06d", id) + payload
}

// chainData lists links as id,dir pairs
func chainData(id int, links ...[2]int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "24%06d%04d", id, len(links))
	for _, l := range links {
		fmt.Fprintf(&sb, "%06d%d", l[0], l[1])
	}
	return sb.String()
}

func polygonData(id, chainID, geomID int, attIDs ...int) string {
	return fmt.Sprintf("31%06d%06d%06d%02d", id, chainID, geomID, len(attIDs)) + ids(attIDs...)
}

// header starts a volume with the given level, product and a FC attribute
// of width 4.
func header(level int, product, version string) *ntfFile {
	b := &ntfFile{}
	b.add(vhrData(level))
	b.add(dhrData(product, version))
	b.add(adrData("FC", 4, "A4", "FEAT_CODE"))
	b.add(shrData("TQ3080", 0, 0, 0, 0))
	return b
}

// pointFile is a single point with one attribute.
func pointFile(level int) string {
	b := header(level, "TEST_PRODUCT", "1.0")
	b.add(pointData(1, 1, 1))
	b.add(geomData(1, 1, [2]int{530000, 180000}))
	b.add(attData(1, "FC1234"))
	b.add("99")
	return b.String()
}

// boundaryFile is a Boundary-Line tile with two links closing one square
// polygon.
func boundaryFile() string {
	b := header(3, "Boundary-Line", "A10N_FC")
	b.add(geomData(1, 2, [2]int{0, 0}, [2]int{10, 0}, [2]int{10, 10}))
	b.add(attData(1, "FC0001"))
	b.add(geomData(2, 2, [2]int{10, 10}, [2]int{0, 10}, [2]int{0, 0}))
	b.add(attData(2, "FC0002"))
	b.add(polygonData(1, 1, 3, 3))
	b.add(attData(3, "FC0100"))
	b.add(chainData(1, [2]int{1, 1}, [2]int{2, 1}))
	b.add(geomData(3, 1, [2]int{5, 5}))
	b.add("99")
	return b.String()
}
