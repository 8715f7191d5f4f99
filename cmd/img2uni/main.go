package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/img2uni"
	"github.com/wbrown/img2uni/imageutil"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	outputFile := flag.String("output", "",
		"Path to save the output (if not specified, prints to stdout)")
	assetDir := flag.String("assets", "assets",
		"Directory holding encoder.embeddings.bin and encoder.chars.json")
	modelURL := flag.String("model-url", "http://localhost:8500",
		"URL of the embedding model server")
	embeddingDim := flag.Int("dim", 64,
		"Embedding dimension of the model")
	targetWidth := flag.Int("width", 80,
		"Target width of the output in characters")
	targetHeight := flag.Int("height", 0,
		"Target height in characters (0 = derive from aspect ratio)")
	charset := flag.String("charset", "default",
		"Charset mode: ascii, default, or all")
	dither := flag.Bool("dither", false,
		"Apply Atkinson dithering before matching")
	invert := flag.Bool("invert", false,
		"Invert image luminance")
	edgeWeight := flag.Float64("edgeweight", 1.0,
		"Blend between shape matching (1.0) and luminosity matching (0.0)")
	flag.Parse()

	if *inputFile == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	mode, err := img2uni.ParseCharsetMode(strings.ToLower(*charset))
	if err != nil {
		fmt.Printf("Invalid charset: %v\n", err)
		os.Exit(1)
	}

	codebook, err := img2uni.LoadCodebook(
		filepath.Join(*assetDir, "encoder.embeddings.bin"),
		filepath.Join(*assetDir, "encoder.chars.json"),
	)
	if err != nil {
		fmt.Printf("Error loading codebook: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Codebook: %d characters, dimension %d\n",
		codebook.Len(), codebook.Dim())

	embedder, err := img2uni.NewRemoteEmbedder(*modelURL, *embeddingDim)
	if err != nil {
		fmt.Printf("Error creating embedder: %v\n", err)
		os.Exit(1)
	}

	converter, err := img2uni.NewConverter(codebook, embedder,
		img2uni.WithTargetWidth(*targetWidth),
		img2uni.WithTargetHeight(*targetHeight),
		img2uni.WithCharset(mode),
		img2uni.WithDither(*dither),
		img2uni.WithInvert(*invert),
		img2uni.WithEdgeWeight(float32(*edgeWeight)),
	)
	if err != nil {
		fmt.Printf("Error creating converter: %v\n", err)
		os.Exit(1)
	}

	img, err := imageutil.LoadImage(*inputFile)
	if err != nil {
		fmt.Printf("Error reading image: %v\n", err)
		os.Exit(1)
	}

	rows, err := converter.ConvertImage(context.Background(), img)
	if err != nil {
		fmt.Printf("Error converting image: %v\n", err)
		os.Exit(1)
	}

	art := strings.Join(rows, "\n") + "\n"
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(art), 0644); err != nil {
			fmt.Printf("Error writing to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Output written to %s\n", *outputFile)
	} else {
		fmt.Print(art)
	}
}
