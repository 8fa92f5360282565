package parser

import (
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// Parser reads NTF transfer files and extracts features.
//
// An NTF volume is a stream of fixed column text records. Header records
// describe the product, its attributes and code lists; the section header
// gives the coordinate scaling; the records after it form groups that each
// translate to one feature.
type Parser interface {
	// Parse reads an NTF file and returns the extracted tile
	// Returns error if the file cannot be opened or is not NTF
	Parse(filename string) (*Tile, error)

	// ParseWithOptions parses with custom options
	ParseWithOptions(filename string, opts ParseOptions) (*Tile, error)

	// ParseReader parses an already opened stream
	ParseReader(r io.Reader, opts ParseOptions) (*Tile, error)
}

// ParseOptions configures parsing behavior
type ParseOptions struct {
	// SkipInvalidFeatures: if true, groups that fail to translate are
	// dropped silently. If false the first decode error is returned once
	// the file has been read.
	// Default: true
	SkipInvalidFeatures bool

	// ValidateGeometry: if true, drop geometries with coordinates that are
	// not finite or lie far outside the tile
	// Default: false
	ValidateGeometry bool

	// ClassFilter: if non-empty, only extract these feature classes
	// Empty means extract all classes
	ClassFilter []string

	// ForceGeneric: read every product with the generic translators
	ForceGeneric bool

	// CacheLines controls the line geometry cache used for polygons
	CacheLines CachePolicy

	// Traversal forces sequential or indexed group building
	Traversal TraversalMode

	// BaseFID offsets the feature ids of this file
	BaseFID int64

	// TileName overrides the tile name of the section header
	TileName string

	// ArcVertices: vertices per stroked arc or circle
	// Default: DefaultArcVertices
	ArcVertices int

	// Logger: destination for debug and warning messages
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultParseOptions returns parse options with defaults
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		SkipInvalidFeatures: true,
		ArcVertices:         DefaultArcVertices,
	}
}

// readerOptions maps parse options onto the reader configuration
func (o ParseOptions) readerOptions() ReaderOptions {
	return ReaderOptions{
		CacheLines:       o.CacheLines,
		Traversal:        o.Traversal,
		ForceGeneric:     o.ForceGeneric,
		TileName:         o.TileName,
		BaseFID:          o.BaseFID,
		ClassFilter:      o.ClassFilter,
		ArcVertices:      o.ArcVertices,
		ValidateGeometry: o.ValidateGeometry,
		Logger:           o.Logger,
	}
}

// defaultParser implements the Parser interface
type defaultParser struct {
}

// NewParser creates a new NTF parser
func NewParser() Parser {
	return &defaultParser{}
}

// Parse reads an NTF file and returns the extracted tile
func (p *defaultParser) Parse(filename string) (*Tile, error) {
	return p.ParseWithOptions(filename, DefaultParseOptions())
}

// ParseWithOptions parses with custom options
func (p *defaultParser) ParseWithOptions(filename string, opts ParseOptions) (*Tile, error) {
	r, err := OpenFile(filename, opts.readerOptions())
	if err != nil {
		return nil, err
	}
	defer r.Close()

	tile, err := readTile(r, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return tile, nil
}

// ParseReader parses an already opened stream
func (p *defaultParser) ParseReader(src io.Reader, opts ParseOptions) (*Tile, error) {
	r, err := NewReader(src, opts.readerOptions())
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readTile(r, opts)
}

// readTile drains r into a Tile.
func readTile(r *Reader, opts ParseOptions) (*Tile, error) {
	tile := &Tile{
		metadata: &tileMetadata{
			level:       r.Level(),
			product:     r.Product(),
			productName: r.ProductName(),
			version:     r.Version(),
			tileName:    r.TileName(),
			traversal:   r.Traversal(),
		},
		params:  r.Params(),
		catalog: r.Catalog(),
		classes: r.FeatureClasses(),
	}

	for {
		f, err := r.NextFeature()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading features of tile %q", r.TileName())
		}
		tile.Features = append(tile.Features, f)
	}
	tile.Issues = r.Issues()
	tile.metadata.idCount = r.FeatureCount()

	if !opts.SkipInvalidFeatures {
		for _, issue := range tile.Issues {
			if errors.Is(issue, ErrDecode) {
				return nil, issue
			}
		}
	}
	return tile, nil
}
