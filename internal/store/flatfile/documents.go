package flatfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// ErrDocumentExists is returned by Create when the number is already taken.
var ErrDocumentExists = fmt.Errorf("document already exists: %w", domain.ErrInvalidTransition)

const (
	invoiceDir = "factures"
	quoteDir   = "devis"
)

// DocumentStore keeps one immutable JSON file per invoice or quote.
type DocumentStore struct {
	root *Root
}

func NewDocumentStore(root *Root) *DocumentStore {
	return &DocumentStore{root: root}
}

func (s *DocumentStore) dir(t tenant.ID, kind domain.DocumentKind) string {
	if kind == domain.KindQuote {
		return s.root.Path(t, quoteDir)
	}
	return s.root.Path(t, invoiceDir)
}

// path validates number before it is turned into a file name.
func (s *DocumentStore) path(t tenant.ID, number string) (string, error) {
	kind, _, _, ok := domain.ParseNumber(number)
	if !ok {
		return "", fmt.Errorf("document number %q: %w", number, domain.ErrInvalidInput)
	}
	return filepath.Join(s.dir(t, kind), number+".json"), nil
}

// Create writes doc exclusively: the file appears fully written or not at
// all, and never replaces an existing document.
func (s *DocumentStore) Create(ctx context.Context, t tenant.ID, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(t, doc.Number)
	if err != nil {
		return fmt.Errorf("documentStore.Create: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("documentStore.Create: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("documentStore.Create: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+doc.Number+".*.tmp")
	if err != nil {
		return fmt.Errorf("documentStore.Create: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("documentStore.Create: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("documentStore.Create: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("documentStore.Create: close: %w", err)
	}

	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("documentStore.Create %s: %w", doc.Number, ErrDocumentExists)
		}
		return fmt.Errorf("documentStore.Create: link: %w", err)
	}
	return nil
}

func (s *DocumentStore) Exists(ctx context.Context, t tenant.ID, number string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.path(t, number)
	if err != nil {
		return false, nil //nolint:nilerr // a malformed number has no file
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("documentStore.Exists: %w", err)
	}
}

func (s *DocumentStore) Read(ctx context.Context, t tenant.ID, number string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(t, number)
	if err != nil {
		return nil, fmt.Errorf("documentStore.Read: %w", err)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("documentStore.Read %s: %w", number, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("documentStore.Read: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("documentStore.Read %s: %w", number, err)
	}
	return &doc, nil
}

// Delete removes the file; a missing file is not an error.
func (s *DocumentStore) Delete(ctx context.Context, t tenant.ID, number string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(t, number)
	if err != nil {
		return fmt.Errorf("documentStore.Delete: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("documentStore.Delete: %w", err)
	}
	return nil
}

// Numbers lists the well-formed document numbers of kind present on disk,
// sorted.
func (s *DocumentStore) Numbers(ctx context.Context, t tenant.ID, kind domain.DocumentKind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir(t, kind))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("documentStore.Numbers: %w", err)
	}

	numbers := make([]string, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		if k, _, _, valid := domain.ParseNumber(name); valid && k == kind {
			numbers = append(numbers, name)
		}
	}
	sort.Strings(numbers)
	return numbers, nil
}
