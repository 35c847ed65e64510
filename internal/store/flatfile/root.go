package flatfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/gosuda/cabinet/internal/tenant"
)

// Root is the data directory holding one sub-directory per tenant.
type Root struct {
	dir string
}

// NewRoot creates dir if needed.
func NewRoot(dir string) (*Root, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("flatfile.NewRoot: %w", err)
	}
	return &Root{dir: dir}, nil
}

// TenantDir returns the tenant's root directory.
func (r *Root) TenantDir(t tenant.ID) string {
	if t == "" {
		t = tenant.Demo
	}
	return filepath.Join(r.dir, string(t))
}

// Path joins elems under the tenant's root.
func (r *Root) Path(t tenant.ID, elem ...string) string {
	return filepath.Join(append([]string{r.TenantDir(t)}, elem...)...)
}

// ReadTable returns the raw bytes of an entity file, creating it with only
// the header line when it does not exist yet.
func (r *Root) ReadTable(ctx context.Context, t tenant.ID, s Schema) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.Path(t, s.File)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		header := []byte(s.Header() + lineEnding)
		if werr := WriteFileAtomic(path, header); werr != nil {
			return nil, werr
		}
		return header, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteTable replaces an entity file with the encoded records.
func (r *Root) WriteTable(ctx context.Context, t tenant.ID, s Schema, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFileAtomic(r.Path(t, s.File), Encode(s, records))
}

// WriteFileAtomic replaces path with data through a synced temp file in
// the same directory, so readers never observe a half-written file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("flatfile.WriteFileAtomic: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o600, renameio.WithTempDir(dir)); err != nil {
		return fmt.Errorf("flatfile.WriteFileAtomic: %w", err)
	}
	return nil
}
