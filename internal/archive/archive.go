package archive

import (
	"path/filepath"
	"strings"
)

// Archive is a manifest paired with its resident dump.
type Archive struct {
	Manifest Manifest
	Section  *Section
}

// Open loads the manifest at path and the dump it names. Relative dump paths are
// resolved against the manifest directory.
func Open(path string) (*Archive, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	dump := m.Dump
	if !filepath.IsAbs(dump) {
		dump = filepath.Join(filepath.Dir(path), dump)
	}
	section, err := LoadSection(dump)
	if err != nil {
		return nil, err
	}
	return &Archive{Manifest: m, Section: section}, nil
}

// Name returns the archive name.
func (a *Archive) Name() string {
	return a.Manifest.Name
}

// Key returns the identity of the object stored at ref in this archive.
func (a *Archive) Key(ref uint32) Key {
	return KeyOf(a.Manifest.Name, ref)
}

// ShortName strips any directory prefix from the archive name.
func (a *Archive) ShortName() string {
	name := a.Manifest.Name
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		return name[i+1:]
	}
	return name
}
