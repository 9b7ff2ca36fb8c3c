package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gruntwork-io/gruntwork-cli/errors"
	"github.com/gruntwork-io/gruntwork-cli/files"
	"github.com/mitchellh/go-homedir"
)

// DefaultStateDirName is the directory under $HOME that holds file snapshots.
const DefaultStateDirName = ".authclient"

// FilePersister stores jar snapshots in a JSON file readable only by its owner.
type FilePersister struct {
	path string
}

// NewFilePersister returns a persister for the given file path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// DefaultFilePath returns <dir>/cookies-<profile>.json, creating dir when needed.
// An empty dir resolves to ~/.authclient.
func DefaultFilePath(dir, profile string) (string, error) {
	if dir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", errors.WithStackTrace(err)
		}
		dir = filepath.Join(home, DefaultStateDirName)
	}
	if profile == "" {
		profile = "default"
	}

	if !files.FileExists(dir) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", errors.WithStackTrace(err)
		}
	}
	return filepath.Join(dir, "cookies-"+profile+".json"), nil
}

// Path returns the snapshot file path.
func (p *FilePersister) Path() string {
	return p.path
}

func (p *FilePersister) Load(_ context.Context) ([]PersistedCookie, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	return decodeSnapshot(data)
}

// Save writes a temp file next to the target and renames it into place.
func (p *FilePersister) Save(_ context.Context, cookies []PersistedCookie) error {
	data, err := encodeSnapshot(cookies)
	if err != nil {
		return errors.WithStackTrace(err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.WithStackTrace(err)
	}

	tmp, err := os.CreateTemp(dir, ".cookies-*")
	if err != nil {
		return errors.WithStackTrace(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return errors.WithStackTrace(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WithStackTrace(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStackTrace(err)
	}
	return errors.WithStackTrace(os.Rename(tmpName, p.path))
}
