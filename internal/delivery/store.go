package delivery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStore persists delivery artifacts as plain files in one directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a store rooted at dir. The directory is created lazily.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Dir returns the cache directory.
func (d *DiskStore) Dir() string {
	return d.dir
}

// Path returns the file path of name.
func (d *DiskStore) Path(name string) string {
	return filepath.Join(d.dir, name)
}

// Exists reports whether name is cached.
func (d *DiskStore) Exists(name string) bool {
	info, err := os.Stat(d.Path(name))

	return err == nil && !info.IsDir()
}

// Read returns the cached bytes of name. ok is false when nothing is cached.
func (d *DiskStore) Read(name string) (data []byte, ok bool, err error) {
	data, err = os.ReadFile(d.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}

	return data, true, nil
}

// Write replaces name with data. Readers see either the old or the new file,
// never a partial one.
func (d *DiskStore) Write(name string, data []byte) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("write %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, d.Path(name)); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("replace %s: %w", name, err)
	}

	return nil
}

// Remove deletes name. A missing file is not an error.
func (d *DiskStore) Remove(name string) error {
	err := os.Remove(d.Path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}

	return nil
}
