package parser

import (
	"strings"
)

// DecodeParameters are the section wide values every geometry record is
// decoded with. They come from the section header record (SHR) and do not
// change for the rest of the file.
type DecodeParameters struct {
	XYLen     int     // Width of each X and Y coordinate field
	ZLen      int     // Width of each Z field
	XYMult    float64 // Ground units per coordinate unit
	ZMult     float64 // Ground units per Z unit
	XOrigin   float64 // Added to every scaled X
	YOrigin   float64 // Added to every scaled Y
	TileXSize float64 // Tile extent east of the origin, 0 if unknown
	TileYSize float64 // Tile extent north of the origin, 0 if unknown

	// Scale is the source scale denominator; PaperToGround converts
	// paper millimetres (text heights) into ground metres.
	Scale         float64
	PaperToGround float64
}

// DefaultDecodeParameters returns unit scaling with ten character coordinate
// fields, the values a section header falls back to.
func DefaultDecodeParameters() DecodeParameters {
	return DecodeParameters{
		XYLen:         10,
		ZLen:          10,
		XYMult:        1,
		ZMult:         1,
		Scale:         10000,
		PaperToGround: 10,
	}
}

// sectionHeader is the decoded SHR record
type sectionHeader struct {
	TileName string
	Params   DecodeParameters
}

// parseSectionHeader decodes the section header record.
//
//	cols 3-12    SECT_REF  tile name
//	cols 15-19   XYLEN
//	cols 21-30   XY_MULT   (thousandths)
//	cols 31-35   ZLEN
//	cols 37-46   Z_MULT    (thousandths)
//	cols 47-56   X_ORIG
//	cols 57-66   Y_ORIG
//	cols 97-106  XMAX
//	cols 107-116 YMAX
//	cols 179-187 SCALE     (only present in long headers)
//
// Missing columns read as zero; widths fall back to 10 and the scale to
// the product default.
func parseSectionHeader(rec *Record, product Product) (sectionHeader, error) {
	if rec.Type() != RecordSectionHeader {
		return sectionHeader{}, formatError(&ErrInvalidHeader{Type: rec.Type(), Reason: "expected section header"})
	}

	p := DecodeParameters{
		XYLen:     rec.IntOrZero(15, 19),
		ZLen:      rec.IntOrZero(31, 35),
		XYMult:    float64(rec.IntOrZero(21, 30)) / 1000.0,
		ZMult:     float64(rec.IntOrZero(37, 46)) / 1000.0,
		XOrigin:   float64(rec.IntOrZero(47, 56)),
		YOrigin:   float64(rec.IntOrZero(57, 66)),
		TileXSize: float64(rec.IntOrZero(97, 106)),
		TileYSize: float64(rec.IntOrZero(107, 116)),
	}
	if p.XYLen <= 0 {
		p.XYLen = 10
	}
	if p.ZLen <= 0 {
		p.ZLen = 10
	}

	if rec.Len() >= 187 {
		p.Scale = float64(rec.IntOrZero(179, 187))
	} else {
		p.Scale = product.DefaultScale()
	}
	if p.Scale != 0 {
		p.PaperToGround = p.Scale / 1000.0
	}

	return sectionHeader{
		TileName: strings.TrimRight(rec.FieldOrEmpty(3, 12), " "),
		Params:   p,
	}, nil
}

// volumeLevel returns the NTF level (1-5) declared in column 57 of the
// volume header record.
func volumeLevel(rec *Record) (int, error) {
	if rec.Type() != RecordVolumeHeader {
		return 0, formatError(&ErrInvalidHeader{Type: rec.Type(), Reason: "file does not start with a volume header; not an NTF file"})
	}
	level := rec.IntOrZero(57, 57)
	if level < 1 || level > 5 {
		return 0, formatError(&ErrInvalidHeader{Type: RecordVolumeHeader, Reason: "NTF level must be 1 to 5"})
	}
	return level, nil
}

// databaseHeader is the decoded DHR record
type databaseHeader struct {
	Product string // cols 3-22
	Version string // cols 79-98
}

func parseDatabaseHeader(rec *Record) databaseHeader {
	return databaseHeader{
		Product: strings.TrimRight(rec.FieldOrEmpty(3, 22), " "),
		Version: strings.TrimRight(rec.FieldOrEmpty(79, 98), " "),
	}
}

// FeatureClass is one feature classification (FCR) entry.
type FeatureClass struct {
	Code string
	Name string
}

// parseFeatureClass decodes an FCR record. The name joins the non blank
// parts of CODE_COM (cols 7-16), STCLASS (cols 17-36) and FEATDES (col 37
// to backslash) with " : ".
func parseFeatureClass(rec *Record) (FeatureClass, bool) {
	if rec.Type() != RecordFeatureClass || rec.Len() < 37 {
		return FeatureClass{}, false
	}
	data := rec.Data()
	var parts []string

	i := 15
	for i > 5 && data[i] == ' ' {
		i--
	}
	if i > 6 {
		parts = append(parts, data[6:i+1])
	}

	i = 35
	for i > 15 && data[i] == ' ' {
		i--
	}
	if i > 15 {
		parts = append(parts, data[16:i+1])
	}

	i = 36
	for i < len(data) && data[i] != '\\' {
		i++
	}
	if i > 37 {
		parts = append(parts, data[36:i])
	}

	return FeatureClass{
		Code: rec.FieldOrEmpty(3, 6),
		Name: strings.Join(parts, " : "),
	}, true
}
