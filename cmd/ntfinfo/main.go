// Command ntfinfo reports on NTF files and converts them to GeoJSON.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/beetlebugorg/ntf/pkg/ntf"
	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
)

// readConfig holds the flags shared by every command that reads files.
type readConfig struct {
	classes   []string
	generic   bool
	traversal string
	cache     string
	baseFID   int64
	strict    bool
	validate  bool
	workers   int
	verbose   bool
}

func defaultReadConfig() readConfig {
	return readConfig{
		traversal: "auto",
		cache:     "auto",
	}
}

func (c *readConfig) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&c.classes, "class", c.classes, "only keep features of these classes (e.g. LANDLINE_POINT)")
	cmd.Flags().BoolVar(&c.generic, "generic", c.generic, "read every product with the generic feature classes")
	cmd.Flags().StringVar(&c.traversal, "traversal", c.traversal, "record grouping: auto, sequential or indexed")
	cmd.Flags().StringVar(&c.cache, "cache", c.cache, "line cache for polygon assembly: auto, always or never")
	cmd.Flags().Int64Var(&c.baseFID, "base-fid", c.baseFID, "id added to the feature ids of the first file")
	cmd.Flags().BoolVar(&c.strict, "strict", c.strict, "fail on the first feature that cannot be decoded")
	cmd.Flags().BoolVar(&c.validate, "validate", c.validate, "drop geometries lying outside the tile extent")
	cmd.Flags().IntVar(&c.workers, "workers", c.workers, "files read in parallel (0 for one per CPU)")
	cmd.Flags().BoolVarP(&c.verbose, "verbose", "v", c.verbose, "log debug output to stderr")
}

func (c *readConfig) loadOptions(log *slog.Logger) (ntf.LoadOptions, error) {
	opts := ntf.DefaultLoadOptions()
	opts.Parallel = c.workers != 1
	opts.Workers = c.workers
	opts.Logger = log

	p := &opts.Parse
	p.ClassFilter = c.classes
	p.ForceGeneric = c.generic
	p.BaseFID = c.baseFID
	p.SkipInvalidFeatures = !c.strict
	p.ValidateGeometry = c.validate
	p.Logger = log
	opts.SkipErrors = !c.strict

	switch strings.ToLower(c.traversal) {
	case "auto":
		p.Traversal = ntf.TraversalAuto
	case "sequential":
		p.Traversal = ntf.TraversalSequential
	case "indexed":
		p.Traversal = ntf.TraversalIndexed
	default:
		return opts, errors.Newf("unknown traversal %q", c.traversal)
	}
	switch strings.ToLower(c.cache) {
	case "auto":
		p.CacheLines = ntf.CacheAuto
	case "always":
		p.CacheLines = ntf.CacheAlways
	case "never":
		p.CacheLines = ntf.CacheNever
	default:
		return opts, errors.Newf("unknown cache policy %q", c.cache)
	}
	return opts, nil
}

func (c *readConfig) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// load reads every file argument; a directory argument is searched for NTF
// files.
func (c *readConfig) load(cmd *cobra.Command, args []string) (*ntf.TileSet, error) {
	log := c.logger(cmd.ErrOrStderr())
	opts, err := c.loadOptions(log)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrap(err, "input")
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := ntf.FindFiles(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			log.Warn("no NTF files found", "dir", arg)
		}
		paths = append(paths, found...)
	}

	ts, errs := ntf.LoadTiles(paths, ntf.NewParser(), opts)
	if ts == nil {
		return nil, errs[0]
	}
	for _, err := range errs {
		log.Warn("skipped file", "error", err)
	}
	if len(ts.Tiles) == 0 {
		return nil, errors.New("no file could be read")
	}
	return ts, nil
}

func makeRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "ntfinfo [command] (flags)",
		Short: "ntfinfo reports on UK National Transfer Format files.",
		Long: `ntfinfo reads Ordnance Survey NTF files, plain or compressed with gzip,
bzip2, xz or zstd, and reports on their content.

Typical usage:
    ntfinfo info TQ3080.NTF
        Print the header metadata and feature counts of a tile.

    ntfinfo features --class LANDLINE_POINT TQ3080.NTF
        List the features of one class.

    ntfinfo geojson -o london.geojson tiles/
        Convert every tile below a directory into one GeoJSON file.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	command.AddCommand(makeInfoCommand())
	command.AddCommand(makeFeaturesCommand())
	command.AddCommand(makeGeoJSONCommand())
	return command
}

func makeInfoCommand() *cobra.Command {
	config := defaultReadConfig()
	cmd := &cobra.Command{
		Use:   "info <file|dir>...",
		Short: "Print header metadata and feature counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := config.load(cmd, args)
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), ts)
		},
	}
	config.addFlags(cmd)
	return cmd
}

func printInfo(w io.Writer, ts *ntf.TileSet) error {
	for i, t := range ts.Tiles {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "File:       %s\n", t.Path())
		fmt.Fprintf(w, "Tile:       %s\n", t.TileName())
		fmt.Fprintf(w, "Product:    %s (%s %s)\n", t.Product(), t.ProductName(), t.Version())
		fmt.Fprintf(w, "Level:      %d\n", t.Level())
		fmt.Fprintf(w, "Traversal:  %s\n", t.Traversal())
		fmt.Fprintf(w, "Scale:      1:%.0f\n", t.Scale())
		if ext, ok := t.Extent(); ok {
			fmt.Fprintf(w, "Extent:     %s\n", formatBound(ext))
		}
		if b, ok := t.Bounds(); ok {
			fmt.Fprintf(w, "Bounds:     %s\n", formatBound(b))
		}
		fmt.Fprintf(w, "Feature ids: %d-%d\n", t.BaseFID+1, t.BaseFID+t.IDCount())
		fmt.Fprintf(w, "Features:   %d\n", t.FeatureCount())

		counts := make(map[string]int)
		for _, f := range t.Features() {
			counts[f.Class()]++
		}
		classes := make([]string, 0, len(counts))
		for c := range counts {
			classes = append(classes, c)
		}
		sort.Strings(classes)
		for _, c := range classes {
			fmt.Fprintf(w, "  %-28s %d\n", c, counts[c])
		}
		if issues := t.Issues(); len(issues) > 0 {
			fmt.Fprintf(w, "Issues:     %d\n", len(issues))
			for _, err := range issues {
				fmt.Fprintf(w, "  %v\n", err)
			}
		}
	}
	return nil
}

func formatBound(b orb.Bound) string {
	return fmt.Sprintf("(%.2f, %.2f) - (%.2f, %.2f)", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}

// parseBound reads "minx,miny,maxx,maxy".
func parseBound(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, errors.Newf("bbox %q: want minx,miny,maxx,maxy", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, errors.Wrapf(err, "bbox %q", s)
		}
		v[i] = f
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func selectFeatures(ts *ntf.TileSet, bbox string) ([]*ntf.Feature, error) {
	if bbox == "" {
		var out []*ntf.Feature
		for _, t := range ts.Tiles {
			out = append(out, t.Features()...)
		}
		return out, nil
	}
	b, err := parseBound(bbox)
	if err != nil {
		return nil, err
	}
	return ts.FeaturesInBounds(b), nil
}

func makeFeaturesCommand() *cobra.Command {
	config := defaultReadConfig()
	var bbox string
	cmd := &cobra.Command{
		Use:   "features <file|dir>...",
		Short: "List features with their geometry type and attributes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := config.load(cmd, args)
			if err != nil {
				return err
			}
			features, err := selectFeatures(ts, bbox)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, f := range features {
				printFeature(w, f)
			}
			return nil
		},
	}
	config.addFlags(cmd)
	cmd.Flags().StringVar(&bbox, "bbox", "", "only list features intersecting minx,miny,maxx,maxy")
	return cmd
}

func printFeature(w io.Writer, f *ntf.Feature) {
	geom := "none"
	if g := f.Geometry(); g != nil {
		geom = g.Type.String()
	}
	fmt.Fprintf(w, "%d\t%s\t%s\t%s", f.ID(), f.TileName(), f.Class(), geom)

	attrs := f.Attributes()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "\t%s=%v", name, attrs[name])
	}
	fmt.Fprintln(w)
}

func makeGeoJSONCommand() *cobra.Command {
	config := defaultReadConfig()
	var (
		output string
		bbox   string
	)
	cmd := &cobra.Command{
		Use:   "geojson <file|dir>...",
		Short: "Convert features with geometry to a GeoJSON feature collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := config.load(cmd, args)
			if err != nil {
				return err
			}

			fc := ts.GeoJSON()
			if bbox != "" {
				features, err := selectFeatures(ts, bbox)
				if err != nil {
					return err
				}
				fc.Features = fc.Features[:0]
				for _, f := range features {
					if gf := f.GeoJSON(); gf != nil {
						fc.Append(gf)
					}
				}
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				out, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, "create output")
				}
				defer out.Close()
				w = out
			}
			return ntf.WriteGeoJSON(w, fc)
		},
	}
	config.addFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&bbox, "bbox", "", "only export features intersecting minx,miny,maxx,maxy")
	return cmd
}

func main() {
	if err := makeRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ntfinfo: %v\n", err)
		os.Exit(1)
	}
}
