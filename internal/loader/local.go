package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxBytes caps a schema document when Options.MaxBytes is unset.
const DefaultMaxBytes = 4 << 20

// ErrTooLarge reports a document above the configured size cap.
var ErrTooLarge = errors.New("loader: document too large")

// loadLocal reads name from files, or from the OS when files is nil.
func loadLocal(ctx context.Context, files fs.FS, name string, limit int64) ([]byte, error) {
	if name == "" {
		return nil, errors.New("loader: path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		f   io.ReadCloser
		err error
	)
	if files == nil {
		abs, absErr := filepath.Abs(name)
		if absErr != nil {
			return nil, absErr
		}
		f, err = os.Open(abs)
	} else {
		f, err = files.Open(name)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, limit)
}

// readLimited reads r fully, failing once more than limit bytes arrive.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
