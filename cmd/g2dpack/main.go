package main

import (
	"flag"
	"log"
	"os"

	"github.com/danmuck/g2dtex/internal/archive"
)

func main() {
	input := flag.String("input", "", "raw dump path")
	output := flag.String("output", "", "compressed dump path (defaults to <input>.zst)")
	flag.Parse()

	if *input == "" {
		log.Fatal("-input is required")
	}
	target := *output
	if target == "" {
		target = *input + ".zst"
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		log.Fatal(err)
	}
	packed, err := archive.Compress(raw)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(target, packed, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("Packed %s (%d bytes) to %s (%d bytes)", *input, len(raw), target, len(packed))
}
