package v1

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/cabinet/internal/billing"
	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/export"
	"github.com/gosuda/cabinet/internal/server/middleware"
)

// SeanceBody is a booking or an edit. On edits, empty fields keep their
// current value.
type SeanceBody struct {
	ID           string   `json:"id_seance,omitempty" format:"uuid" doc:"Generated when empty"`
	ClientID     string   `json:"id_client,omitempty"`
	TarifID      string   `json:"id_tarif,omitempty"`
	DateHeure    string   `json:"date_heure_seance,omitempty" doc:"RFC 3339 or YYYY-MM-DDTHH:MM local time"`
	Montant      *float64 `json:"montant_facture,omitempty" minimum:"0" doc:"Defaults to the tarif price"`
	Statut       string   `json:"statut_seance,omitempty" enum:"PLANIFIEE,APAYER,PAYEE,ANNULEE"`
	ModePaiement string   `json:"mode_paiement,omitempty"`
	DatePaiement string   `json:"date_paiement,omitempty" doc:"YYYY-MM-DD, required for PAYEE"`
}

func (b *SeanceBody) input() (billing.SeanceInput, error) {
	in := billing.SeanceInput{
		ID:           b.ID,
		ClientID:     b.ClientID,
		TarifID:      b.TarifID,
		Statut:       domain.SeanceStatus(b.Statut),
		ModePaiement: b.ModePaiement,
		DatePaiement: b.DatePaiement,
	}
	if b.DateHeure != "" {
		in.DateHeure = domain.ParseDateTime(b.DateHeure)
		if in.DateHeure.IsZero() {
			return in, huma.Error400BadRequest(fmt.Sprintf("date_heure_seance %q is not a date", b.DateHeure))
		}
	}
	if b.Montant != nil {
		m := domain.NewMoney(*b.Montant)
		in.Montant = &m
	}
	return in, nil
}

type ListSeancesInput struct{}

type ListSeancesOutput struct {
	Body []*domain.Seance
}

type SeanceIDInput struct {
	ID string `path:"id" doc:"Seance ID"`
}

type SeanceOutput struct {
	Body *domain.Seance
}

type CreateSeanceInput struct {
	Body SeanceBody
}

type UpdateSeanceInput struct {
	ID   string `path:"id" doc:"Seance ID"`
	Body SeanceBody
}

type UpdateStatusInput struct {
	ID   string `path:"id" doc:"Seance ID"`
	Body struct {
		Statut       string `json:"statut_seance" enum:"PLANIFIEE,APAYER,PAYEE,ANNULEE"`
		ModePaiement string `json:"mode_paiement,omitempty"`
		DatePaiement string `json:"date_paiement,omitempty" doc:"YYYY-MM-DD"`
	}
}

// DocumentResultOutput carries the updated seance and the document that
// was just issued for it.
type DocumentResultOutput struct {
	Body struct {
		Seance   *domain.Seance   `json:"seance"`
		Document *domain.Document `json:"document"`
	}
}

type ExportSeancesInput struct{}

type ExportSeancesOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func RegisterSeanceRoutes(api huma.API, svc SeanceService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-seances",
		Method:      http.MethodGet,
		Path:        "/seances",
		Summary:     "List seances",
		Description: "Document numbers whose file has disappeared are cleared before the list is returned.",
		Tags:        []string{"Seances"},
	}, func(ctx context.Context, _ *ListSeancesInput) (*ListSeancesOutput, error) {
		seances, err := svc.ListSeances(ctx, middleware.TenantFromContext(ctx))
		if err != nil {
			return nil, problem(err, "failed to list seances")
		}
		return &ListSeancesOutput{Body: seances}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-seances",
		Method:      http.MethodGet,
		Path:        "/seances/export",
		Summary:     "Download all seances as a spreadsheet",
		Tags:        []string{"Seances"},
	}, func(ctx context.Context, _ *ExportSeancesInput) (*ExportSeancesOutput, error) {
		var buf bytes.Buffer
		if err := export.Seances(ctx, svc, middleware.TenantFromContext(ctx), &buf); err != nil {
			return nil, problem(err, "failed to export seances")
		}
		return &ExportSeancesOutput{
			ContentType:        export.ContentType,
			ContentDisposition: fmt.Sprintf(`attachment; filename="seances-%s.xlsx"`, time.Now().Format(domain.DateLayout)),
			Body:               buf.Bytes(),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-seance",
		Method:      http.MethodPost,
		Path:        "/seances",
		Summary:     "Book a seance",
		Tags:        []string{"Seances"},
	}, func(ctx context.Context, input *CreateSeanceInput) (*SeanceOutput, error) {
		if input.Body.ClientID == "" || input.Body.TarifID == "" || input.Body.DateHeure == "" {
			return nil, huma.Error400BadRequest("id_client, id_tarif and date_heure_seance are required")
		}
		in, err := input.Body.input()
		if err != nil {
			return nil, err
		}
		se, err := svc.CreateSeance(ctx, middleware.TenantFromContext(ctx), in)
		if err != nil {
			return nil, problem(err, "failed to create seance")
		}
		return &SeanceOutput{Body: se}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-seance",
		Method:      http.MethodGet,
		Path:        "/seances/{id}",
		Summary:     "Get a seance by ID",
		Tags:        []string{"Seances"},
	}, func(ctx context.Context, input *SeanceIDInput) (*SeanceOutput, error) {
		se, err := svc.GetSeance(ctx, middleware.TenantFromContext(ctx), input.ID)
		if err != nil {
			return nil, problem(err, "failed to get seance")
		}
		return &SeanceOutput{Body: se}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-seance",
		Method:      http.MethodPut,
		Path:        "/seances/{id}",
		Summary:     "Edit a seance",
		Description: "Client, tarif, date and amount are frozen once the seance is invoiced.",
		Tags:        []string{"Seances"},
	}, func(ctx context.Context, input *UpdateSeanceInput) (*SeanceOutput, error) {
		in, err := input.Body.input()
		if err != nil {
			return nil, err
		}
		se, err := svc.UpdateSeance(ctx, middleware.TenantFromContext(ctx), input.ID, in)
		if err != nil {
			return nil, problem(err, "failed to update seance")
		}
		return &SeanceOutput{Body: se}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-seance-status",
		Method:      http.MethodPatch,
		Path:        "/seances/{id}/status",
		Summary:     "Set the status and payment of a seance",
		Tags:        []string{"Seances"},
	}, func(ctx context.Context, input *UpdateStatusInput) (*SeanceOutput, error) {
		se, err := svc.UpdateStatus(ctx, middleware.TenantFromContext(ctx), input.ID,
			domain.SeanceStatus(input.Body.Statut), input.Body.ModePaiement, input.Body.DatePaiement)
		if err != nil {
			return nil, problem(err, "failed to update seance status")
		}
		return &SeanceOutput{Body: se}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-seance",
		Method:        http.MethodDelete,
		Path:          "/seances/{id}",
		Summary:       "Delete a seance that has no invoice",
		Tags:          []string{"Seances"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *SeanceIDInput) (*struct{}, error) {
		if err := svc.DeleteSeance(ctx, middleware.TenantFromContext(ctx), input.ID); err != nil {
			return nil, problem(err, "failed to delete seance")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "generate-invoice",
		Method:        http.MethodPost,
		Path:          "/seances/{id}/invoice",
		Summary:       "Issue the invoice of a seance",
		Tags:          []string{"Seances", "Documents"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SeanceIDInput) (*DocumentResultOutput, error) {
		se, doc, err := svc.GenerateInvoice(ctx, middleware.TenantFromContext(ctx), input.ID)
		if err != nil {
			return nil, problem(err, "failed to generate invoice")
		}
		out := &DocumentResultOutput{}
		out.Body.Seance = se
		out.Body.Document = doc
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "generate-quote",
		Method:        http.MethodPost,
		Path:          "/seances/{id}/quote",
		Summary:       "Issue a quote for an upcoming seance",
		Tags:          []string{"Seances", "Documents"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SeanceIDInput) (*DocumentResultOutput, error) {
		se, doc, err := svc.GenerateQuote(ctx, middleware.TenantFromContext(ctx), input.ID)
		if err != nil {
			return nil, problem(err, "failed to generate quote")
		}
		out := &DocumentResultOutput{}
		out.Body.Seance = se
		out.Body.Document = doc
		return out, nil
	})
}
