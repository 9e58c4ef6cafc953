package store

import (
	"io"
	"os"
	"path/filepath"
)

// OSFS implements Filesystem on a directory of the host filesystem. It is
// what the host runner mounts in place of on-chip flash.
type OSFS struct {
	Root string
}

var _ Filesystem = (*OSFS)(nil)

// Mount creates the root directory if needed. There is nothing to format.
func (fs *OSFS) Mount() error {
	return os.MkdirAll(fs.Root, 0o755)
}

func (fs *OSFS) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(fs.Root, name))
	return err == nil
}

func (fs *OSFS) OpenAppend(name string) (io.WriteCloser, error) {
	return os.OpenFile(filepath.Join(fs.Root, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
