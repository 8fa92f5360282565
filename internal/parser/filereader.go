package parser

import (
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
)

// CachePolicy decides whether line geometries are kept for polygon
// assembly.
type CachePolicy int

const (
	// CacheAuto caches lines for products that build polygons from shared
	// edges, and never in indexed traversal.
	CacheAuto CachePolicy = iota
	CacheAlways
	CacheNever
)

// TraversalMode selects how record groups are formed.
type TraversalMode int

const (
	// TraversalAuto reads unrecognised products of level 3 and above
	// through the index and everything else sequentially.
	TraversalAuto TraversalMode = iota
	TraversalSequential
	TraversalIndexed
)

func (m TraversalMode) String() string {
	switch m {
	case TraversalSequential:
		return "sequential"
	case TraversalIndexed:
		return "indexed"
	default:
		return "auto"
	}
}

// ReaderOptions configures a Reader
type ReaderOptions struct {
	// CacheLines controls the line geometry cache
	CacheLines CachePolicy

	// Traversal forces sequential or indexed group building
	Traversal TraversalMode

	// ForceGeneric reads every product with the generic translators
	ForceGeneric bool

	// TileName overrides the tile name of the section header
	TileName string

	// BaseFID is added to the running feature counter. The first feature
	// of a file gets BaseFID+1.
	BaseFID int64

	// ClassFilter, if non-empty, limits the returned features to these
	// classes. Skipped groups still consume a feature id.
	ClassFilter []string

	// ArcVertices is the number of vertices an arc or circle is stroked
	// with. Default: DefaultArcVertices
	ArcVertices int

	// ValidateGeometry drops geometries with non finite coordinates or
	// coordinates far outside the tile, recording a decode error that names
	// the geometry id. Off by default.
	ValidateGeometry bool

	// Logger receives debug and warning messages. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultReaderOptions returns reader options with defaults
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		CacheLines:  CacheAuto,
		Traversal:   TraversalAuto,
		ArcVertices: DefaultArcVertices,
	}
}

// Position is a resumable point in sequential traversal
type Position struct {
	Offset   int64 // byte offset of the next unread group
	Features int64 // feature counter at that point
}

// Reader reads features from one NTF file.
//
// Opening a Reader consumes the header records up to and including the
// section header. NextFeature then returns one feature per record group,
// building groups either from consecutive records or from the record index.
type Reader struct {
	rr     *recordReader
	closer io.Closer
	opts   ReaderOptions
	log    *slog.Logger

	level       int
	productName string
	version     string
	product     Product
	tileName    string
	params      DecodeParameters
	catalog     *AttributeCatalog
	classes     []FeatureClass

	table    translationTable
	filter   map[string]bool
	cache    *GeometryCache
	decoder  *GeometryDecoder
	ctx      *translateContext
	startPos int64

	indexedMode bool
	seq         *sequentialGrouper
	index       *TypeIndex
	walker      *indexedGrouper

	counter int64
	issues  []error
	closed  bool
}

// OpenFile opens path and reads its headers.
func OpenFile(path string, opts ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	r, err := NewReader(f, opts)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "%s", path)
	}
	r.closer = f
	return r, nil
}

// NewReader reads the headers of src. Reset, Seek and indexed traversal
// need src to be an io.Seeker; sequential reading of a plain stream works
// once.
func NewReader(src io.Reader, opts ReaderOptions) (*Reader, error) {
	if opts.ArcVertices < 2 {
		opts.ArcVertices = DefaultArcVertices
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	r := &Reader{
		rr:      newRecordReader(src),
		opts:    opts,
		log:     log,
		catalog: NewAttributeCatalog(),
		index:   NewTypeIndex(),
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

// open reads the volume header, the header records and the section header.
func (r *Reader) open() error {
	rec, err := r.rr.Next()
	if err == io.EOF {
		return formatError(&ErrInvalidHeader{Reason: "empty file; not an NTF file"})
	}
	if err != nil {
		return err
	}
	if r.level, err = volumeLevel(rec); err != nil {
		return err
	}

	var shr *Record
	for shr == nil {
		rec, err := r.rr.Next()
		if err == io.EOF {
			return formatError(&ErrInvalidHeader{Type: RecordVolumeTerminator, Reason: "end of volume before section header"})
		}
		if err != nil {
			return err
		}

		switch rec.Type() {
		case RecordFeatureClass:
			if fc, ok := parseFeatureClass(rec); ok {
				r.classes = append(r.classes, fc)
			}

		case RecordAttributeDesc:
			desc, err := parseAttributeDescriptor(rec)
			if err != nil {
				r.issue(err)
				continue
			}
			if !r.catalog.Add(desc) {
				r.log.Debug("duplicate attribute description", "code", desc.Code)
			}

		case RecordCodeList:
			list, truncated := parseCodeList(rec)
			if truncated {
				r.log.Warn("code list truncated", "code", list.Code, "entries", list.Len())
			}
			switch r.catalog.AttachCodeList(list) {
			case codeListNoDescriptor:
				r.log.Debug("code list without attribute description", "code", list.Code)
			case codeListDuplicate:
				r.log.Debug("duplicate code list discarded", "code", list.Code)
			}

		case RecordDatabaseHeader:
			if r.productName == "" {
				db := parseDatabaseHeader(rec)
				r.productName, r.version = db.Product, db.Version
			}

		case RecordVolumeTerminator:
			return formatError(&ErrInvalidHeader{Type: RecordVolumeTerminator, Reason: "end of volume before section header"})

		case RecordSectionHeader:
			shr = rec
		}
	}

	if r.productName == "" {
		return formatError(&ErrInvalidHeader{Type: RecordDatabaseHeader, Reason: "no product name"})
	}
	r.product = classifyProduct(r.productName, r.version, func(code string) bool {
		_, ok := r.catalog.Lookup(code)
		return ok
	})
	if r.product.IsRaster() {
		return formatError(&ErrInvalidHeader{Type: RecordDatabaseHeader, Reason: "raster product " + r.product.String() + " is not supported"})
	}
	if r.opts.ForceGeneric {
		r.product = ProductUnknown
	}

	sh, err := parseSectionHeader(shr, r.product)
	if err != nil {
		return err
	}
	r.params = sh.Params
	r.tileName = sh.TileName
	if r.opts.TileName != "" {
		r.tileName = r.opts.TileName
	}
	r.startPos = r.rr.Offset()

	switch r.opts.Traversal {
	case TraversalIndexed:
		r.indexedMode = true
	case TraversalSequential:
		r.indexedMode = false
	default:
		r.indexedMode = r.product == ProductUnknown && r.level > 2
	}
	switch r.opts.CacheLines {
	case CacheAlways:
		r.cache = NewGeometryCache()
	case CacheAuto:
		if r.product.CachesLines() && !r.indexedMode {
			r.cache = NewGeometryCache()
		}
	}

	r.table = translatorsFor(r.product)
	if len(r.opts.ClassFilter) > 0 {
		r.filter = make(map[string]bool, len(r.opts.ClassFilter))
		for _, c := range r.opts.ClassFilter {
			r.filter[c] = true
		}
	}
	r.decoder = NewGeometryDecoder(r.params, r.cache, r.opts.ArcVertices)
	r.ctx = &translateContext{product: r.product, catalog: r.catalog, decoder: r.decoder}
	if r.cache != nil {
		r.ctx.assembler = NewPolygonAssembler(r.cache)
	}
	r.seq = newSequentialGrouper(r.rr)
	r.walker = newIndexedGrouper(r.index)

	r.log.Debug("opened NTF file",
		"product", r.product.String(),
		"product_name", r.productName,
		"version", r.version,
		"level", r.level,
		"tile", r.tileName,
		"traversal", r.Traversal().String(),
		"cache_lines", r.cache != nil)
	return nil
}

// Level returns the NTF level of the volume header (1-5).
func (r *Reader) Level() int { return r.level }

// Product returns the classified product.
func (r *Reader) Product() Product { return r.product }

// ProductName returns the product name of the database header.
func (r *Reader) ProductName() string { return r.productName }

// Version returns the product version of the database header.
func (r *Reader) Version() string { return r.version }

// TileName returns the section reference, or the TileName option when set.
func (r *Reader) TileName() string { return r.tileName }

// Params returns the decode parameters of the section header.
func (r *Reader) Params() DecodeParameters { return r.params }

// Catalog returns the attribute descriptors of the file.
func (r *Reader) Catalog() *AttributeCatalog { return r.catalog }

// FeatureClasses returns the feature classification records.
func (r *Reader) FeatureClasses() []FeatureClass { return r.classes }

// Classes returns the feature classes the reader's product can produce.
func (r *Reader) Classes() []string { return r.table.Classes() }

// Traversal returns the traversal mode in use.
func (r *Reader) Traversal() TraversalMode {
	if r.indexedMode {
		return TraversalIndexed
	}
	return TraversalSequential
}

// CachesLines reports whether line geometries are kept for polygons.
func (r *Reader) CachesLines() bool { return r.cache != nil }

// FeatureCount returns the number of feature ids handed out since the
// last Reset.
func (r *Reader) FeatureCount() int64 { return r.counter }

// Issues returns the non fatal errors recorded so far.
func (r *Reader) Issues() []error { return r.issues }

func (r *Reader) issue(err error) {
	r.issues = append(r.issues, err)
	r.log.Warn("ntf record problem", "tile", r.tileName, "error", err)
}

// NextFeature returns the next feature, or io.EOF after the last one. An
// error marked ErrFormat means the rest of the file cannot be read.
func (r *Reader) NextFeature() (*Feature, error) {
	if r.closed {
		return nil, errors.New("ntf: reader is closed")
	}
	for {
		group, err := r.nextGroup()
		if err != nil {
			return nil, err
		}
		if group == nil {
			return nil, io.EOF
		}

		anchor := group[0]

		// Only translatable groups use a feature id, including those the
		// class filter drops.
		tr, ok := r.table[anchor.Type()]
		if !ok {
			if anchor.Type() != RecordComment {
				r.log.Debug("no translator for group", "record_type", anchor.Type().String(), "id", anchor.ID(), "product", r.product.String())
			}
			r.cacheGroupLines(group)
			continue
		}
		if r.filter != nil && !r.filter[tr.class] {
			r.counter++
			r.cacheGroupLines(group)
			continue
		}

		f, errs := tr.translate(r.ctx, group)
		for _, e := range errs {
			r.issue(e)
		}
		if f == nil {
			continue
		}
		r.counter++
		f.ID = r.opts.BaseFID + r.counter
		f.TileName = r.tileName
		if r.opts.ValidateGeometry && f.Geometry != nil {
			if err := ValidateFeature(f, r.params); err != nil {
				r.issue(errors.Wrapf(err, "%s geometry %d dropped", f.Class, f.GeomID))
				f.Geometry = nil
			}
		}
		return f, nil
	}
}

// nextGroup returns the next record group of the current traversal. A nil
// group means the end of the section.
func (r *Reader) nextGroup() ([]*Record, error) {
	if r.indexedMode {
		if !r.index.Built() {
			if _, err := r.BuildIndex(); err != nil {
				return nil, err
			}
		}
		group, errs := r.walker.Next()
		for _, e := range errs {
			r.issue(e)
		}
		return group, nil
	}

	group, err := r.seq.Next()
	if err != nil {
		if !errors.Is(err, ErrCapacity) {
			return nil, err
		}
		r.issue(err)
	}
	return group, nil
}

// cacheGroupLines decodes the geometries of a group that is not translated
// so that later polygons can still use its lines.
func (r *Reader) cacheGroupLines(group []*Record) {
	if r.cache == nil {
		return
	}
	for _, rec := range group {
		if !rec.Type().IsGeometry() {
			continue
		}
		if _, _, err := r.decoder.Decode(rec); err != nil {
			r.log.Debug("skipped geometry not cached", "id", rec.ID(), "error", err)
		}
	}
}

// rewind moves the record stream back to the first record after the
// section header.
func (r *Reader) rewind() error {
	if r.seq.saved == nil && r.rr.Offset() == r.startPos {
		return nil
	}
	return r.seq.seek(r.startPos)
}

// Reset restarts traversal at the first feature. The feature counter
// starts again, the line cache and the index are kept.
func (r *Reader) Reset() error {
	r.counter = 0
	r.walker.rewind()
	if r.indexedMode && r.index.Built() {
		return nil
	}
	return r.rewind()
}

// Position returns the current sequential traversal position.
func (r *Reader) Position() (Position, error) {
	if r.indexedMode {
		return Position{}, errors.New("ntf: positions are only available in sequential traversal")
	}
	return Position{Offset: r.seq.position(), Features: r.counter}, nil
}

// Seek resumes sequential traversal at a position returned by Position.
func (r *Reader) Seek(pos Position) error {
	if r.indexedMode {
		return errors.New("ntf: positions are only available in sequential traversal")
	}
	if err := r.seq.seek(pos.Offset); err != nil {
		return err
	}
	r.counter = pos.Features
	return nil
}

// BuildIndex scans the section once and indexes every record by type and
// id. Traversal switches to indexed mode and restarts at the first anchor.
// Building an index that is already current fails with ErrIndexBuilt.
func (r *Reader) BuildIndex() (IndexStats, error) {
	if r.index.Built() {
		return IndexStats{}, ErrIndexBuilt
	}
	if err := r.rewind(); err != nil {
		return IndexStats{}, err
	}
	stats, err := r.index.Build(r.rr)
	if err != nil {
		return stats, err
	}
	for _, dup := range stats.Duplicates {
		r.log.Debug("duplicate record in index", "record_type", dup.Type.String(), "id", dup.ID)
	}
	if stats.Skipped > 0 {
		r.log.Debug("records not indexed", "count", stats.Skipped)
	}
	r.indexedMode = true
	r.walker.rewind()
	r.counter = 0
	return stats, nil
}

// InvalidateIndex drops the index. Indexed traversal rebuilds it on the
// next call to NextFeature.
func (r *Reader) InvalidateIndex() {
	r.index.Invalidate()
	r.walker.rewind()
}

// Close releases the line cache and the index, and closes the file when
// the reader opened it.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.cache != nil {
		r.cache.Clear()
	}
	r.index.Invalidate()
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
