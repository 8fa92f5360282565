package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/ntf/pkg/ntf"
	"github.com/paulmach/orb"
)

func main() {
	// Parse tile
	parser := ntf.NewParser()
	ds, err := parser.Parse("TQ3080.NTF")
	if err != nil {
		log.Fatal(err)
	}

	// Define viewport (a 250m square near Trafalgar Square), in National Grid metres
	viewport := orb.Bound{
		Min: orb.Point{530000, 180250},
		Max: orb.Point{530250, 180500},
	}

	// Query R-tree index for visible features (O(log n))
	features := ds.FeaturesInBounds(viewport)

	fmt.Printf("Visible features: %d\n", len(features))

	for _, feature := range features {
		fmt.Printf("  %d %s: %s\n",
			feature.ID(),
			feature.Class(),
			feature.Geometry().Type)
	}
}
