package ntf

import (
	"log/slog"

	"github.com/beetlebugorg/ntf/internal/parser"
)

// CachePolicy controls the line geometry cache used to build polygons from
// shared links.
type CachePolicy = parser.CachePolicy

const (
	CacheAuto   = parser.CacheAuto
	CacheAlways = parser.CacheAlways
	CacheNever  = parser.CacheNever
)

// TraversalMode selects how record groups are formed.
type TraversalMode = parser.TraversalMode

const (
	TraversalAuto       = parser.TraversalAuto
	TraversalSequential = parser.TraversalSequential
	TraversalIndexed    = parser.TraversalIndexed
)

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// SkipInvalidFeatures keeps going past groups that fail to decode. When
	// false the first decode error fails the parse.
	SkipInvalidFeatures bool

	// ValidateGeometry drops geometries lying far outside the tile extent.
	// Off by default.
	ValidateGeometry bool
	ClassFilter      []string

	// ForceGeneric reads every product with the generic feature classes.
	ForceGeneric bool

	CacheLines CachePolicy
	Traversal  TraversalMode

	// BaseFID is added to every feature id of the file.
	BaseFID int64

	// TileName replaces the section reference of the file.
	TileName string

	// ArcVertices is the number of vertices arcs and circles are stroked
	// with.
	ArcVertices int

	// Compression overrides detection from the file name. Readers handed
	// to ParseReader are sniffed when this is CompressionAuto.
	Compression Compression

	Logger *slog.Logger
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		SkipInvalidFeatures: true,
		ArcVertices:         parser.DefaultArcVertices,
		Compression:         CompressionAuto,
	}
}

func (o ParseOptions) internal() parser.ParseOptions {
	return parser.ParseOptions{
		SkipInvalidFeatures: o.SkipInvalidFeatures,
		ValidateGeometry:    o.ValidateGeometry,
		ClassFilter:         o.ClassFilter,
		ForceGeneric:        o.ForceGeneric,
		CacheLines:          o.CacheLines,
		Traversal:           o.Traversal,
		BaseFID:             o.BaseFID,
		TileName:            o.TileName,
		ArcVertices:         o.ArcVertices,
		Logger:              o.Logger,
	}
}
