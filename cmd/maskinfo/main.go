// Command maskinfo inspects an exported mask raster and reports whether it
// is a valid strict two-tone mask, its dimensions, and its painted coverage.
package main

import (
	"flag"
	"fmt"
	"os"

	"scan-annotator/internal/mask"
)

func main() {
	maskPath := flag.String("mask", "", "Path to mask PNG")
	flag.Parse()

	if *maskPath == "" {
		fmt.Println("Usage: maskinfo -mask <path>")
		os.Exit(1)
	}

	data, err := os.ReadFile(*maskPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read mask: %v\n", err)
		os.Exit(1)
	}

	img, err := mask.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode mask: %v\n", err)
		os.Exit(1)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	fmt.Printf("Loaded mask: %dx%d pixels\n", w, h)

	var painted, offTone int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			white := r == 0xffff && g == 0xffff && b == 0xffff
			black := r == 0 && g == 0 && b == 0
			switch {
			case a != 0xffff || (!white && !black):
				offTone++
			case white:
				painted++
			}
		}
	}

	total := w * h
	fmt.Printf("Painted: %d of %d pixels (%.2f%%)\n",
		painted, total, 100*float64(painted)/float64(total))

	if offTone > 0 {
		fmt.Printf("INVALID: %d pixels are neither opaque white nor opaque black\n", offTone)
		os.Exit(1)
	}
	fmt.Println("Mask is strict two-tone")
}
