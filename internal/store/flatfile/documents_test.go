package flatfile_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/store/flatfile"
)

func testDocument(number string) *domain.Document {
	kind, _, _, _ := domain.ParseNumber(number)
	return &domain.Document{
		Number:    number,
		Kind:      kind,
		IssueDate: "2026-03-14",
		SeanceID:  "s-1",
		Client:    domain.ClientSnapshot{ID: "DUPONT_MARIE", Nom: "Dupont", Prenom: "Marie"},
		Service: []domain.LineItem{{
			Date: "2026-03-14", Description: "Consultation", Quantity: 1, UnitPrice: domain.NewMoney(60),
		}},
	}
}

func TestDocumentStore_CreateReadDelete(t *testing.T) {
	t.Parallel()

	s, dir := newStore(t)
	ctx := context.Background()
	docs := s.Documents()

	require.NoError(t, docs.Create(ctx, testTenant, testDocument("FAC-2026-0001")))
	_, err := os.Stat(filepath.Join(dir, string(testTenant), "factures", "FAC-2026-0001.json"))
	require.NoError(t, err)

	ok, err := docs.Exists(ctx, testTenant, "FAC-2026-0001")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := docs.Read(ctx, testTenant, "FAC-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, "60.00", got.Service[0].UnitPrice.Fixed())
	assert.Equal(t, domain.KindInvoice, got.Kind)

	require.NoError(t, docs.Delete(ctx, testTenant, "FAC-2026-0001"))
	require.NoError(t, docs.Delete(ctx, testTenant, "FAC-2026-0001"), "deleting twice is fine")

	_, err = docs.Read(ctx, testTenant, "FAC-2026-0001")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Create_Exclusive(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()
	docs := s.Documents()

	require.NoError(t, docs.Create(ctx, testTenant, testDocument("DEV-2026-0001")))

	err := docs.Create(ctx, testTenant, testDocument("DEV-2026-0001"))
	require.ErrorIs(t, err, flatfile.ErrDocumentExists)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDocumentStore_Create_Concurrent(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()
	docs := s.Documents()

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := docs.Create(ctx, testTenant, testDocument("FAC-2026-0042")); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, success)
}

func TestDocumentStore_RejectsMalformedNumbers(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()
	docs := s.Documents()

	for _, number := range []string{"../../etc/passwd", "FAC-2026-../x", "XYZ-2026-0001", ""} {
		err := docs.Create(ctx, testTenant, testDocument(number))
		require.ErrorIs(t, err, domain.ErrInvalidInput, number)

		ok, err := docs.Exists(ctx, testTenant, number)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestDocumentStore_Numbers(t *testing.T) {
	t.Parallel()

	s, dir := newStore(t)
	ctx := context.Background()
	docs := s.Documents()

	for _, n := range []string{"DEV-2026-0002", "DEV-2025-0009", "DEV-2026-0001"} {
		require.NoError(t, docs.Create(ctx, testTenant, testDocument(n)))
	}
	// Stray files are ignored.
	quoteDir := filepath.Join(dir, string(testTenant), "devis")
	require.NoError(t, os.WriteFile(filepath.Join(quoteDir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(quoteDir, "FAC-2026-0001.json"), []byte("{}"), 0o600))

	got, err := docs.Numbers(ctx, testTenant, domain.KindQuote)
	require.NoError(t, err)
	assert.Equal(t, []string{"DEV-2025-0009", "DEV-2026-0001", "DEV-2026-0002"}, got)

	none, err := docs.Numbers(ctx, testTenant, domain.KindInvoice)
	require.NoError(t, err)
	assert.Empty(t, none)
}
