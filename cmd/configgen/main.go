package main

import (
	"flag"
	"log"

	"github.com/danmuck/g2dtex/internal/archive"
	"github.com/danmuck/g2dtex/internal/config"
)

func main() {
	kind := flag.String("kind", "service", "config kind: service|manifest")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}

		switch *kind {
		case "service":
			if _, err := config.LoadServiceConfig(path); err != nil {
				log.Fatal(err)
			}
		case "manifest":
			if _, err := archive.LoadManifest(path); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}

func defaultPath(kind string) string {
	switch kind {
	case "service":
		return "cmd/g2dctl/config.toml"
	case "manifest":
		return "assets/menu.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}
