package studio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

// Saver receives a finished recording.
type Saver interface {
	Save(ctx context.Context, name string, data []byte) error
}

// DirSaver writes recordings into a directory, replacing files of the same name.
type DirSaver struct {
	Dir string
}

// Path returns where name would be written.
func (d DirSaver) Path(name string) (string, error) {
	dir, err := homedir.Expand(d.Dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(name)), nil
}

func (d DirSaver) Save(_ context.Context, name string, data []byte) error {
	path, err := d.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return err
	}
	return os.Rename(tmp, path)
}
