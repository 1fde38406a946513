package archive

import (
	"fmt"
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"
)

// Key is a stable identity for an archive object.
type Key uint64

// KeyOf derives the identity of the object stored at ref in the named archive.
func KeyOf(archiveName string, ref uint32) Key {
	d := xxhash.New()
	_, _ = d.WriteString(archiveName)
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(strconv.FormatUint(uint64(ref), 16))
	return Key(d.Sum64())
}

func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

// ParseKey parses the form produced by String.
func ParseKey(s string) (Key, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("archive: invalid key %q: %w", s, err)
	}
	return Key(v), nil
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	v, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
