// Package export writes a tenant's seances as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// SheetName is the name of the single worksheet.
const SheetName = "Séances"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"Date", "Heure", "Client", "Prestation", "Montant",
	"Statut", "Mode de paiement", "Date de paiement", "Facture", "Devis",
}

// Source lists what goes into the workbook.
type Source interface {
	ListSeances(ctx context.Context, t tenant.ID) ([]*domain.Seance, error)
	ListClients(ctx context.Context, t tenant.ID) ([]*domain.Client, error)
	ListTarifs(ctx context.Context, t tenant.ID) ([]*domain.Tarif, error)
}

// Seances writes every seance of the tenant to w, oldest first.
func Seances(ctx context.Context, src Source, t tenant.ID, w io.Writer) error {
	seances, err := src.ListSeances(ctx, t)
	if err != nil {
		return fmt.Errorf("export.Seances: %w", err)
	}
	clients, err := src.ListClients(ctx, t)
	if err != nil {
		return fmt.Errorf("export.Seances: %w", err)
	}
	tarifs, err := src.ListTarifs(ctx, t)
	if err != nil {
		return fmt.Errorf("export.Seances: %w", err)
	}

	f, err := Workbook(seances, clients, tarifs)
	if err != nil {
		return fmt.Errorf("export.Seances: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export.Seances: write: %w", err)
	}
	return nil
}

// Workbook builds the workbook in memory. Client and tarif references that
// no longer resolve are shown as "Inconnu".
func Workbook(seances []*domain.Seance, clients []*domain.Client, tarifs []*domain.Tarif) (*excelize.File, error) {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.FullName()
	}
	labels := make(map[string]string, len(tarifs))
	for _, tf := range tarifs {
		labels[tf.ID] = tf.Libelle
	}

	rows := append([]*domain.Seance(nil), seances...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DateHeure.Before(rows[j].DateHeure) })

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("export.Workbook: %w", err)
	}

	if err := writeRows(f, rows, names, labels); err != nil {
		f.Close()
		return nil, fmt.Errorf("export.Workbook: %w", err)
	}
	return f, nil
}

func writeRows(f *excelize.File, rows []*domain.Seance, names, labels map[string]string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}

	for i, se := range rows {
		client, ok := names[se.ClientID]
		if !ok {
			client = domain.UnknownLabel
		}
		label, ok := labels[se.TarifID]
		if !ok {
			label = domain.UnknownLabel
		}
		amount, _ := se.Montant.Float64()

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			se.DateHeure.Format(domain.DateLayout),
			se.DateHeure.Format("15:04"),
			client,
			label,
			amount,
			string(se.Statut),
			se.ModePaiement,
			se.DatePaiement,
			se.InvoiceNumber,
			se.DevisNumber,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", "J1", bold); err != nil {
		return err
	}
	if len(rows) > 0 {
		currency, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "E2", fmt.Sprintf("E%d", len(rows)+1), currency); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "C", "D", 24); err != nil {
		return err
	}
	return f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
