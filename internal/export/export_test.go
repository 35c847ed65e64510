package export_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/export"
	"github.com/gosuda/cabinet/internal/tenant"
)

// --- mocks ---

type mockSource struct {
	seances    []*domain.Seance
	clients    []*domain.Client
	tarifs     []*domain.Tarif
	seancesErr error
}

func (m *mockSource) ListSeances(context.Context, tenant.ID) ([]*domain.Seance, error) {
	return m.seances, m.seancesErr
}

func (m *mockSource) ListClients(context.Context, tenant.ID) ([]*domain.Client, error) {
	return m.clients, nil
}

func (m *mockSource) ListTarifs(context.Context, tenant.ID) ([]*domain.Tarif, error) {
	return m.tarifs, nil
}

func sampleSource() *mockSource {
	return &mockSource{
		clients: []*domain.Client{{ID: "DUPONT_MARIE", Nom: "Dupont", Prenom: "Marie"}},
		tarifs:  []*domain.Tarif{{ID: "CONSULTATION", Libelle: "Consultation"}},
		seances: []*domain.Seance{
			{
				ID: "b", ClientID: "DUPONT_MARIE", TarifID: "CONSULTATION",
				DateHeure: time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
				Montant:   domain.NewMoney(60), Statut: domain.SeancePlanned, DevisNumber: "DEV-2026-0001",
			},
			{
				ID: "a", ClientID: "GONE", TarifID: "CONSULTATION",
				DateHeure: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
				Montant:   domain.NewMoney(45.5), Statut: domain.SeancePaid, ModePaiement: "CB",
				DatePaiement: "2026-03-10", InvoiceNumber: "FAC-2026-0001",
			},
		},
	}
}

func TestSeances_Workbook(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, export.Seances(context.Background(), sampleSource(), tenant.Demo, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Devis", rows[0][9])

	// oldest first
	assert.Equal(t, "2026-03-10", rows[1][0])
	assert.Equal(t, "14:00", rows[1][1])
	assert.Equal(t, domain.UnknownLabel, rows[1][2])
	assert.Equal(t, "Consultation", rows[1][3])
	assert.Equal(t, "PAYEE", rows[1][5])
	assert.Equal(t, "FAC-2026-0001", rows[1][8])

	assert.Equal(t, "Marie Dupont", rows[2][2])
	assert.Equal(t, "DEV-2026-0001", rows[2][9])

	raw, err := f.GetCellValue(export.SheetName, "E2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "45.5", raw)
}

func TestSeances_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, export.Seances(context.Background(), &mockSource{}, tenant.Demo, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestSeances_SourceError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := export.Seances(context.Background(), &mockSource{seancesErr: errors.New("disk gone")}, tenant.Demo, &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
