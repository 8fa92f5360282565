package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/ntf/pkg/ntf"
)

func main() {
	// Create parser
	parser := ntf.NewParser()

	// Parse tile file
	ds, err := parser.Parse("TQ3080.NTF")
	if err != nil {
		log.Fatal(err)
	}

	// Print tile info
	fmt.Printf("Tile: %s\n", ds.TileName())
	fmt.Printf("Product: %s (%s)\n", ds.Product(), ds.Version())
	fmt.Printf("Features: %d\n", ds.FeatureCount())

	// Get tile bounds
	if bounds, ok := ds.Bounds(); ok {
		fmt.Printf("Bounds: [%.1f,%.1f] to [%.1f,%.1f]\n",
			bounds.Min[0], bounds.Min[1],
			bounds.Max[0], bounds.Max[1])
	}
}
