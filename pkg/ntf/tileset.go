package ntf

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Tile is one file of a TileSet.
type Tile struct {
	*Dataset

	// BaseFID is added to the ids of the file; the tile's features have
	// ids BaseFID+1 to BaseFID+IDCount().
	BaseFID int64
}

// Coverage returns the area the tile covers: its header extent when it
// has one, otherwise the bounds of its features.
func (t *Tile) Coverage() (orb.Bound, bool) {
	if b, ok := t.Extent(); ok {
		return b, true
	}
	return t.Bounds()
}

// tileEntry wraps a tile for R-tree storage.
type tileEntry struct {
	index int
	tile  *Tile
	bound orb.Bound
}

func (e *tileEntry) Bounds() rtreego.Rect {
	return rect(e.bound)
}

// TileSet is a group of NTF files read together, typically adjacent tiles
// of one product. Feature ids are unique across the set: each file starts
// where the previous one, in load order, ended.
type TileSet struct {
	Tiles []*Tile
	rtree *rtreego.Rtree
}

// LoadOptions controls how a TileSet is loaded.
type LoadOptions struct {
	// Parse is applied to every file. Its BaseFID is the base of the first
	// file.
	Parse ParseOptions

	// Parallel enables concurrent loading with Workers goroutines
	// (runtime.NumCPU() when 0). Off by default; files are then read one at
	// a time in path order.
	Parallel bool
	Workers  int

	// SkipErrors continues past files that fail to load. When false the
	// first error stops loading.
	SkipErrors bool

	// Progress is called after each file with the number processed so far.
	Progress func(loaded, total int)

	// Logger receives one warning per failed file. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultLoadOptions returns load options with defaults. Loading is serial
// until Parallel is set.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parse:      DefaultParseOptions(),
		Parallel:   false,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
	}
}

// LoadTiles loads the files in paths into a TileSet. Tiles keep the order
// of paths and feature ids follow it, whether or not loading runs in
// parallel.
//
// Example:
//
//	p := ntf.NewParser()
//	set, errs := ntf.LoadTiles([]string{"TQ28.NTF", "TQ38.NTF"}, p, ntf.DefaultLoadOptions())
//	fmt.Printf("%d tiles, %d features, %d errors\n", len(set.Tiles), set.FeatureCount(), len(errs))
func LoadTiles(paths []string, p Parser, opts LoadOptions) (*TileSet, []error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	parseOpts := opts.Parse
	base := parseOpts.BaseFID
	parseOpts.BaseFID = 0

	datasets, errs := loadDatasets(paths, p, parseOpts, opts, log)
	if datasets == nil {
		return nil, errs
	}

	ts := &TileSet{Tiles: make([]*Tile, 0, len(paths))}
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		if base != 0 {
			for _, f := range ds.features {
				f.id += base
			}
		}
		ts.Tiles = append(ts.Tiles, &Tile{Dataset: ds, BaseFID: base})
		base += ds.IDCount()
	}
	ts.buildIndex()
	return ts, errs
}

// loadDatasets parses every path. The result is indexed like paths with nil
// entries for files that failed; a nil result means loading stopped.
func loadDatasets(paths []string, p Parser, parseOpts ParseOptions, opts LoadOptions, log *slog.Logger) ([]*Dataset, []error) {
	datasets := make([]*Dataset, len(paths))
	if len(paths) == 0 {
		return datasets, nil
	}

	workers := 1
	if opts.Parallel {
		workers = opts.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		if workers > len(paths) {
			workers = len(paths)
		}
	}

	type loadResult struct {
		index int
		ds    *Dataset
		err   error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				ds, err := p.ParseWithOptions(paths[index], parseOpts)
				results <- loadResult{index: index, ds: ds, err: err}
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var errs []error
	failed := false
	loaded := 0
	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}
		if result.err != nil {
			err := errors.Wrapf(result.err, "load tile %s", paths[result.index])
			log.Warn("tile not loaded", "path", paths[result.index], "error", result.err)
			errs = append(errs, err)
			if !opts.SkipErrors {
				failed = true
			}
			continue
		}
		datasets[result.index] = result.ds
	}
	if failed {
		return nil, errs[:1]
	}
	return datasets, errs
}

// FindFiles returns the NTF files below root in lexical order. Files are
// recognised by a ".ntf" suffix, optionally followed by a compression
// suffix.
func FindFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isNTFPath(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk directory")
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDir loads every NTF file below root, in the order of FindFiles.
func LoadDir(root string, p Parser, opts LoadOptions) (*TileSet, []error) {
	paths, err := FindFiles(root)
	if err != nil {
		return nil, []error{err}
	}
	if len(paths) == 0 {
		return nil, []error{errors.Newf("no NTF files found in %s", root)}
	}
	return LoadTiles(paths, p, opts)
}

func (ts *TileSet) buildIndex() {
	ts.rtree = rtreego.NewTree(2, 25, 50)
	for i, t := range ts.Tiles {
		if b, ok := t.Coverage(); ok {
			ts.rtree.Insert(&tileEntry{index: i, tile: t, bound: b})
		}
	}
}

// FeatureCount returns the number of features in every tile.
func (ts *TileSet) FeatureCount() int {
	n := 0
	for _, t := range ts.Tiles {
		n += t.FeatureCount()
	}
	return n
}

// Tile returns the tile with the given section name.
func (ts *TileSet) Tile(name string) (*Tile, bool) {
	for _, t := range ts.Tiles {
		if t.TileName() == name {
			return t, true
		}
	}
	return nil, false
}

// Feature returns the feature with a set wide id.
func (ts *TileSet) Feature(id int64) (*Feature, bool) {
	i := sort.Search(len(ts.Tiles), func(i int) bool {
		t := ts.Tiles[i]
		return t.BaseFID+t.IDCount() >= id
	})
	if i == len(ts.Tiles) || id <= ts.Tiles[i].BaseFID {
		return nil, false
	}
	return ts.Tiles[i].Feature(id)
}

// TilesInBounds returns the tiles whose coverage intersects b, in load
// order.
func (ts *TileSet) TilesInBounds(b orb.Bound) []*Tile {
	if ts.rtree == nil {
		return nil
	}
	var hits []*tileEntry
	for _, sp := range ts.rtree.SearchIntersect(queryRect(b)) {
		e := sp.(*tileEntry)
		if e.bound.Intersects(b) {
			hits = append(hits, e)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })
	out := make([]*Tile, len(hits))
	for i, e := range hits {
		out[i] = e.tile
	}
	return out
}

// FeaturesInBounds returns the features of every tile whose geometry bounds
// intersect b, ordered by id.
func (ts *TileSet) FeaturesInBounds(b orb.Bound) []*Feature {
	var out []*Feature
	for _, t := range ts.TilesInBounds(b) {
		out = append(out, t.FeaturesInBounds(b)...)
	}
	return out
}

// Bounds returns the union of the tile coverages.
func (ts *TileSet) Bounds() (orb.Bound, bool) {
	var (
		b     orb.Bound
		found bool
	)
	for _, t := range ts.Tiles {
		tb, ok := t.Coverage()
		if !ok {
			continue
		}
		if !found {
			b, found = tb, true
			continue
		}
		b = b.Union(tb)
	}
	return b, found
}
