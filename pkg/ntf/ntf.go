// Package ntf reads UK National Transfer Format (NTF) files, the fixed column
// text format Ordnance Survey used to distribute vector products such as
// Land-Line, Strategi, Meridian, OSCAR, Code-Point and Boundary-Line.
//
// A file is read into a Dataset: the header metadata of its single section,
// every translated feature and an R-tree over the feature bounds. Several
// tiles of one product are read into a TileSet, which gives every feature a
// set wide id.
package ntf

import (
	"io"

	"github.com/beetlebugorg/ntf/internal/parser"
	"github.com/cockroachdb/errors"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Error categories. Use errors.Is to test which kind of problem occurred.
var (
	// ErrFormat marks input that is not NTF or cannot be read further.
	ErrFormat = parser.ErrFormat
	// ErrDecode marks a record or group that could not be decoded.
	ErrDecode = parser.ErrDecode
	// ErrReference marks a reference to a record or geometry that does not
	// exist.
	ErrReference = parser.ErrReference
	// ErrCapacity marks a group or list that was cut at its limit.
	ErrCapacity = parser.ErrCapacity
)

// Product is the classified NTF product of a file.
type Product = parser.Product

// Parser parses NTF files.
//
// Create a parser with NewParser and use Parse or ParseWithOptions to read
// files.
type Parser interface {
	// Parse reads an NTF file, compressed or not, and returns its dataset.
	Parse(filename string) (*Dataset, error)

	// ParseWithOptions parses an NTF file with custom options.
	ParseWithOptions(filename string, opts ParseOptions) (*Dataset, error)

	// ParseReader parses an NTF stream. Streams that are not an
	// io.ReadSeeker can only use sequential traversal.
	ParseReader(r io.Reader, opts ParseOptions) (*Dataset, error)
}

// NewParser creates a new NTF parser with default settings.
//
// Example:
//
//	p := ntf.NewParser()
//	ds, err := p.Parse("TQ3080.NTF")
func NewParser() Parser {
	return &parserWrapper{
		internal: parser.NewParser(),
	}
}

// parserWrapper wraps the internal parser and converts types
type parserWrapper struct {
	internal parser.Parser
}

func (p *parserWrapper) Parse(filename string) (*Dataset, error) {
	return p.ParseWithOptions(filename, DefaultParseOptions())
}

func (p *parserWrapper) ParseWithOptions(filename string, opts ParseOptions) (*Dataset, error) {
	src, err := OpenSource(filename, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	tile, err := p.internal.ParseReader(src, opts.internal())
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	ds := convertTile(tile)
	ds.path = filename
	return ds, nil
}

func (p *parserWrapper) ParseReader(r io.Reader, opts ParseOptions) (*Dataset, error) {
	src, err := newSource(r, opts.Compression)
	if err != nil {
		return nil, err
	}
	tile, err := p.internal.ParseReader(src, opts.internal())
	if err != nil {
		return nil, err
	}
	return convertTile(tile), nil
}

// Dataset is the content of one NTF file.
//
// Access metadata via methods like TileName(), Product(), Level().
// Access features via Features(), FeaturesInBounds(), or FeatureCount().
type Dataset struct {
	features     []*Feature
	spatialIndex *spatialIndex
	bounds       orb.Bound
	hasBounds    bool

	path        string
	tileName    string
	level       int
	product     Product
	productName string
	version     string
	traversal   TraversalMode
	params      parser.DecodeParameters
	classes     []FeatureClass
	attributes  []AttributeDescriptor
	idCount     int64
	issues      []error
}

// FeatureClass is a feature classification record of the file header.
type FeatureClass struct {
	Code string
	Name string
}

// AttributeDescriptor describes one attribute code of the file.
type AttributeDescriptor struct {
	Code   string // two character code, e.g. "FC"
	Name   string // long name, e.g. "FEAT_CODE"
	Width  int    // 0 for variable width values
	Format string // format string, e.g. "A4" or "R6,2"
}

// Path returns the file the dataset was read from, empty for streams.
func (d *Dataset) Path() string { return d.path }

// TileName returns the section reference of the file.
func (d *Dataset) TileName() string { return d.tileName }

// Level returns the NTF level of the volume (1-5).
func (d *Dataset) Level() int { return d.level }

// Product returns the classified product.
func (d *Dataset) Product() Product { return d.product }

// ProductName returns the product name as stored in the database header.
func (d *Dataset) ProductName() string { return d.productName }

// Version returns the product version of the database header.
func (d *Dataset) Version() string { return d.version }

// Traversal returns how the file's record groups were built.
func (d *Dataset) Traversal() TraversalMode { return d.traversal }

// Scale returns the source scale denominator.
func (d *Dataset) Scale() float64 { return d.params.Scale }

// Origin returns the ground position of the section origin.
func (d *Dataset) Origin() orb.Point {
	return orb.Point{d.params.XOrigin, d.params.YOrigin}
}

// Extent returns the tile extent of the section header. ok is false when
// the header gives no extent.
func (d *Dataset) Extent() (orb.Bound, bool) {
	if d.params.TileXSize <= 0 || d.params.TileYSize <= 0 {
		return orb.Bound{}, false
	}
	return orb.Bound{
		Min: d.Origin(),
		Max: orb.Point{d.params.XOrigin + d.params.TileXSize, d.params.YOrigin + d.params.TileYSize},
	}, true
}

// FeatureClasses returns the feature classification records of the header.
func (d *Dataset) FeatureClasses() []FeatureClass { return d.classes }

// Attributes returns the attribute descriptors of the header in file order.
func (d *Dataset) Attributes() []AttributeDescriptor { return d.attributes }

// Issues returns the problems met while reading that did not stop it.
func (d *Dataset) Issues() []error { return d.issues }

// IDCount returns the number of feature ids the file used. Groups dropped by
// a class filter still use an id.
func (d *Dataset) IDCount() int64 { return d.idCount }

// Features returns all features in file order.
func (d *Dataset) Features() []*Feature { return d.features }

// FeatureCount returns the number of features.
func (d *Dataset) FeatureCount() int { return len(d.features) }

// Feature returns the feature with the given id.
func (d *Dataset) Feature(id int64) (*Feature, bool) {
	for _, f := range d.features {
		if f.id == id {
			return f, true
		}
	}
	return nil, false
}

// FeaturesByClass returns the features of one class in file order.
func (d *Dataset) FeaturesByClass(class string) []*Feature {
	var out []*Feature
	for _, f := range d.features {
		if f.class == class {
			out = append(out, f)
		}
	}
	return out
}

// Bounds returns the bounding box of every feature geometry. ok is false
// when no feature has geometry.
func (d *Dataset) Bounds() (orb.Bound, bool) {
	return d.bounds, d.hasBounds
}

// FeaturesInBounds returns the features whose geometry bounds intersect b.
// Features without geometry are never returned.
//
// Example:
//
//	view := orb.Bound{Min: orb.Point{530000, 180000}, Max: orb.Point{531000, 181000}}
//	for _, f := range ds.FeaturesInBounds(view) {
//	    draw(f)
//	}
func (d *Dataset) FeaturesInBounds(b orb.Bound) []*Feature {
	if d.spatialIndex == nil {
		return nil
	}
	return d.spatialIndex.search(b)
}

// spatialIndex is an R-tree over feature bounds.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	feature *Feature
	bounds  orb.Bound
}

// minExtent is the size given to zero width bounds; the R-tree needs non
// zero lengths. Ground units are metres.
const minExtent = 0.01

func rect(b orb.Bound) rtreego.Rect {
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if w < minExtent {
		w = minExtent
	}
	if h < minExtent {
		h = minExtent
	}
	r, _ := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
	return r
}

// queryRect pads a query so that bounds touching its edges are found; the
// R-tree treats touching rectangles as disjoint.
func queryRect(b orb.Bound) rtreego.Rect {
	return rect(orb.Bound{
		Min: orb.Point{b.Min[0] - minExtent, b.Min[1] - minExtent},
		Max: orb.Point{b.Max[0] + minExtent, b.Max[1] + minExtent},
	})
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return rect(f.bounds)
}

func newSpatialIndex(features []*Feature) *spatialIndex {
	rtree := rtreego.NewTree(2, 25, 50)
	for _, f := range features {
		if f.geometry == nil {
			continue
		}
		rtree.Insert(&indexedFeature{feature: f, bounds: f.geometry.Bound()})
	}
	return &spatialIndex{rtree: rtree}
}

func (s *spatialIndex) search(b orb.Bound) []*Feature {
	spatials := s.rtree.SearchIntersect(queryRect(b))
	result := make([]*Feature, 0, len(spatials))
	for _, sp := range spatials {
		indexed := sp.(*indexedFeature)
		if indexed.bounds.Intersects(b) {
			result = append(result, indexed.feature)
		}
	}
	sortByID(result)
	return result
}

// convertTile converts the internal tile to the public dataset.
func convertTile(t *parser.Tile) *Dataset {
	d := &Dataset{
		tileName:    t.TileName(),
		level:       t.Level(),
		product:     t.Product(),
		productName: t.ProductName(),
		version:     t.Version(),
		traversal:   t.Traversal(),
		params:      t.Params(),
		idCount:     t.IDCount(),
		issues:      t.Issues,
	}
	for _, fc := range t.FeatureClasses() {
		d.classes = append(d.classes, FeatureClass{Code: fc.Code, Name: fc.Name})
	}
	if t.Catalog() != nil {
		for _, desc := range t.Catalog().Descriptors() {
			d.attributes = append(d.attributes, AttributeDescriptor{
				Code:   desc.Code,
				Name:   desc.Name,
				Width:  desc.Width,
				Format: desc.Format,
			})
		}
	}

	d.features = make([]*Feature, len(t.Features))
	for i, f := range t.Features {
		d.features[i] = convertFeature(f)
	}
	d.bounds, d.hasBounds = t.Bounds()
	d.spatialIndex = newSpatialIndex(d.features)
	return d
}
