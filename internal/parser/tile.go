package parser

import (
	"github.com/paulmach/orb"
)

// Tile is the content of one NTF file: its header metadata and every
// translated feature.
type Tile struct {
	metadata *tileMetadata     // Private - use accessor methods
	params   DecodeParameters  // Private - section header scaling
	catalog  *AttributeCatalog // Private - attribute descriptors
	classes  []FeatureClass    // Private - feature classification records
	Features []*Feature        // Public - features in traversal order
	Issues   []error           // Public - non fatal problems met while reading
}

// tileMetadata is what the header records say about the file
type tileMetadata struct {
	level       int
	product     Product
	productName string
	version     string
	tileName    string
	traversal   TraversalMode
	idCount     int64 // feature ids handed out, filtered groups included
}

// TileName returns the section reference of the tile.
func (t *Tile) TileName() string {
	if t.metadata == nil {
		return ""
	}
	return t.metadata.tileName
}

// Level returns the NTF level (1-5).
func (t *Tile) Level() int {
	if t.metadata == nil {
		return 0
	}
	return t.metadata.level
}

// Product returns the classified product.
func (t *Tile) Product() Product {
	if t.metadata == nil {
		return ProductUnknown
	}
	return t.metadata.product
}

// ProductName returns the product name as written in the database header.
func (t *Tile) ProductName() string {
	if t.metadata == nil {
		return ""
	}
	return t.metadata.productName
}

// Version returns the product version of the database header.
func (t *Tile) Version() string {
	if t.metadata == nil {
		return ""
	}
	return t.metadata.version
}

// Traversal returns how record groups were built.
func (t *Tile) Traversal() TraversalMode {
	if t.metadata == nil {
		return TraversalAuto
	}
	return t.metadata.traversal
}

// Params returns the decode parameters of the section header.
func (t *Tile) Params() DecodeParameters {
	return t.params
}

// Catalog returns the attribute descriptors of the file.
func (t *Tile) Catalog() *AttributeCatalog {
	if t.catalog == nil {
		return NewAttributeCatalog()
	}
	return t.catalog
}

// FeatureClasses returns the feature classification records.
func (t *Tile) FeatureClasses() []FeatureClass {
	return t.classes
}

// IDCount returns the number of feature ids the file used. It can exceed
// len(Features) when a class filter skipped groups or groups failed to
// translate; the next file of a set starts its ids after this many.
func (t *Tile) IDCount() int64 {
	if t.metadata == nil {
		return 0
	}
	return t.metadata.idCount
}

// Extent returns the tile extent from the section header. ok is false when
// the header gives no extent.
func (t *Tile) Extent() (orb.Bound, bool) {
	if t.params.TileXSize <= 0 || t.params.TileYSize <= 0 {
		return orb.Bound{}, false
	}
	return orb.Bound{
		Min: orb.Point{t.params.XOrigin, t.params.YOrigin},
		Max: orb.Point{t.params.XOrigin + t.params.TileXSize, t.params.YOrigin + t.params.TileYSize},
	}, true
}

// Bounds returns the bounding box of every feature geometry. ok is false
// when no feature has geometry.
func (t *Tile) Bounds() (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, f := range t.Features {
		if f.Geometry == nil || f.Geometry.Geom == nil {
			continue
		}
		fb := f.Geometry.Bound()
		if !found {
			b = fb
			found = true
			continue
		}
		b = b.Union(fb)
	}
	return b, found
}

// FeaturesByClass returns the features of one class in traversal order.
func (t *Tile) FeaturesByClass(class string) []*Feature {
	var out []*Feature
	for _, f := range t.Features {
		if f.Class == class {
			out = append(out, f)
		}
	}
	return out
}
