package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/ntf/pkg/ntf"
)

func main() {
	parser := ntf.NewParser()

	opts := ntf.DefaultLoadOptions()
	opts.Workers = 4
	opts.Progress = func(loaded, total int) {
		fmt.Printf("\rloaded %d/%d", loaded, total)
	}

	// Load every tile below a directory; ids run on from tile to tile
	set, errs := ntf.LoadDir("landline/", parser, opts)
	fmt.Println()
	for _, err := range errs {
		log.Printf("skipped: %v", err)
	}
	if set == nil {
		log.Fatal("nothing loaded")
	}

	for _, tile := range set.Tiles {
		fmt.Printf("%s: ids %d-%d, %d features\n",
			tile.TileName(), tile.BaseFID+1, tile.BaseFID+tile.IDCount(), tile.FeatureCount())
	}

	if b, ok := set.Bounds(); ok {
		fmt.Printf("coverage: %v\n", b)
		fmt.Printf("tiles at the centre: %d\n", len(set.TilesInBounds(b.Center().Bound())))
	}
}
