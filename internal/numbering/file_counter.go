package numbering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/store/flatfile"
	"github.com/gosuda/cabinet/internal/tenant"
)

const countersFile = "counters.json"

// FileCounter keeps the counters in counters.json at the tenant root,
// keyed "FAC-2026". The file is replaced atomically on every reservation.
type FileCounter struct {
	root *flatfile.Root
	mu   sync.Mutex
}

func NewFileCounter(root *flatfile.Root) *FileCounter {
	return &FileCounter{root: root}
}

func (c *FileCounter) Reserve(ctx context.Context, t tenant.ID, kind domain.DocumentKind, year, floor int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.root.Path(t, countersFile)
	counters := map[string]int{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return 0, fmt.Errorf("fileCounter.Reserve: %w", err)
	default:
		if err := json.Unmarshal(data, &counters); err != nil {
			return 0, fmt.Errorf("fileCounter.Reserve: corrupt %s: %w", countersFile, err)
		}
	}

	key := string(kind) + "-" + strconv.Itoa(year)
	next := max(counters[key], floor) + 1
	counters[key] = next

	out, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("fileCounter.Reserve: %w", err)
	}
	if err := flatfile.WriteFileAtomic(path, out); err != nil {
		return 0, fmt.Errorf("fileCounter.Reserve: %w", err)
	}
	return next, nil
}
