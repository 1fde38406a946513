package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "service":
		return serviceTemplate, nil
	case "manifest":
		return manifestTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serviceTemplate = `name = "g2dctl"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
serve = true
manifests = ["assets/menu.toml"]
`

const manifestTemplate = `name = "LEVEL\\MENU.G2D"
dump = "menu.bin"

[[materials]]
hash = "MAT_MENU"
offset = 0x0000
flags = 0
render = { offset = 0x0000, count = 4 }

  [[materials.layers]]
  flags = 0
  palette_id = 0

    [materials.layers.texture]
    hash = "TEX_MENU"
    has_palette = true

      [materials.layers.texture.bitmap]
      offset = 0x0040
      width = 64
      height = 64
      psm = 0x13
      mip_levels = 1
      upload = [{ offset = 0x0100, count = 8 }, { offset = 0x0100, count = 8 }]

      [[materials.layers.texture.palettes]]
      offset = 0x0080
      width = 16
      height = 16
      psm = 0x00
      mip_levels = 1
      upload = [{ offset = 0x0200, count = 11 }]
`
