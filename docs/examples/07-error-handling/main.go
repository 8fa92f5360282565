package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/ntf/pkg/ntf"
)

func safeParseTile(path string) (*ntf.Dataset, error) {
	parser := ntf.NewParser()

	ds, err := parser.Parse(path)
	if err != nil {
		// Check if file exists
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("tile file not found: %s", path)
		}
		if errors.Is(err, ntf.ErrFormat) {
			return nil, fmt.Errorf("%s is not an NTF file: %w", path, err)
		}
		return nil, err
	}

	// Problems that did not stop the read
	for _, issue := range ds.Issues() {
		switch {
		case errors.Is(issue, ntf.ErrReference):
			log.Printf("Warning: dangling reference: %v", issue)
		case errors.Is(issue, ntf.ErrCapacity):
			log.Printf("Warning: list truncated: %v", issue)
		default:
			log.Printf("Warning: %v", issue)
		}
	}

	return ds, nil
}

func main() {
	// Try to parse a tile
	ds, err := safeParseTile("TQ3080.NTF")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	fmt.Printf("Successfully loaded tile: %s\n", ds.TileName())
	fmt.Printf("Features: %d\n", ds.FeatureCount())

	// Strict mode fails on the first undecodable feature
	opts := ntf.DefaultParseOptions()
	opts.SkipInvalidFeatures = false
	if _, err := ntf.NewParser().ParseWithOptions("TQ3080.NTF", opts); errors.Is(err, ntf.ErrDecode) {
		log.Printf("Strict read failed: %v", err)
	}

	// Try to parse a non-existent tile
	_, err = safeParseTile("NONEXISTENT.NTF")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
