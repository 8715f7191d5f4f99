// compute_codebook builds the codebook asset pair from a font: it
// enumerates the font's renderable characters, renders each into a cell,
// embeds the cells through the model server, runs greedy distinctness
// curation, and persists the surviving characters with their embeddings.
//
// The curation order (ascending codepoint) and threshold are part of the
// trained artifact; rerun training when either changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wbrown/img2uni"
)

func main() {
	fontPath := flag.String("font", "",
		"Path to the TTF font to scan (required)")
	modelURL := flag.String("model-url", "http://localhost:8500",
		"URL of the embedding model server")
	embeddingDim := flag.Int("dim", 64,
		"Embedding dimension of the model")
	threshold := flag.Float64("threshold", img2uni.DefaultDistinctThreshold,
		"Maximum pairwise similarity between retained characters")
	outputDir := flag.String("output", "assets",
		"Directory to write encoder.embeddings.bin and encoder.chars.json")
	flag.Parse()

	if *fontPath == "" {
		fmt.Println("Please provide the font using the -font flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ttf, err := img2uni.LoadFont(*fontPath)
	if err != nil {
		fmt.Printf("Error loading font: %v\n", err)
		os.Exit(1)
	}

	runes := img2uni.FontRunes(ttf)
	fmt.Printf("Scanning font: %s\n", *fontPath)
	fmt.Printf("  Found %d candidate characters\n", len(runes))

	embedder, err := img2uni.NewRemoteEmbedder(*modelURL, *embeddingDim)
	if err != nil {
		fmt.Printf("Error creating embedder: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Computing embeddings...")
	start := time.Now()
	pool, err := img2uni.BuildPool(context.Background(), ttf, runes, embedder)
	if err != nil {
		fmt.Printf("Error building candidate pool: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Embedded %d characters in %v\n", len(pool), time.Since(start))

	fmt.Printf("Selecting distinct characters (threshold=%.2f)...\n", *threshold)
	codebook, err := img2uni.CurateDistinct(pool, float32(*threshold))
	if err != nil {
		fmt.Printf("Error curating: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Selected %d distinct characters\n", codebook.Len())

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	binPath := filepath.Join(*outputDir, "encoder.embeddings.bin")
	descPath := filepath.Join(*outputDir, "encoder.chars.json")
	if err := codebook.Save(binPath, descPath); err != nil {
		fmt.Printf("Error saving codebook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Saved: %s, %s\n", binPath, descPath)
}
