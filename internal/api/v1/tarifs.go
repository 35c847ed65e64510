package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/server/middleware"
)

type TarifBody struct {
	Libelle string  `json:"libelle" minLength:"1" maxLength:"200" doc:"Label shown on documents"`
	Montant float64 `json:"montant" minimum:"0" doc:"Price in euros"`
	Duree   *int    `json:"duree,omitempty" minimum:"0" maximum:"1440" doc:"Duration in minutes"`
}

func (b *TarifBody) tarif() *domain.Tarif {
	return &domain.Tarif{
		Libelle: b.Libelle,
		Montant: domain.NewMoney(b.Montant),
		Duree:   b.Duree,
	}
}

type ListTarifsInput struct{}

type ListTarifsOutput struct {
	Body []*domain.Tarif
}

type TarifIDInput struct {
	ID string `path:"id" doc:"Tarif ID"`
}

type TarifOutput struct {
	Body *domain.Tarif
}

type CreateTarifInput struct {
	Body TarifBody
}

type UpdateTarifInput struct {
	ID   string `path:"id" doc:"Tarif ID"`
	Body TarifBody
}

func RegisterTarifRoutes(api huma.API, svc TarifService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tarifs",
		Method:      http.MethodGet,
		Path:        "/tarifs",
		Summary:     "List tarifs",
		Tags:        []string{"Tarifs"},
	}, func(ctx context.Context, _ *ListTarifsInput) (*ListTarifsOutput, error) {
		tarifs, err := svc.ListTarifs(ctx, middleware.TenantFromContext(ctx))
		if err != nil {
			return nil, problem(err, "failed to list tarifs")
		}
		return &ListTarifsOutput{Body: tarifs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-tarif",
		Method:      http.MethodPost,
		Path:        "/tarifs",
		Summary:     "Create a tarif",
		Tags:        []string{"Tarifs"},
	}, func(ctx context.Context, input *CreateTarifInput) (*TarifOutput, error) {
		tf, err := svc.CreateTarif(ctx, middleware.TenantFromContext(ctx), input.Body.tarif())
		if err != nil {
			return nil, problem(err, "failed to create tarif")
		}
		return &TarifOutput{Body: tf}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tarif",
		Method:      http.MethodGet,
		Path:        "/tarifs/{id}",
		Summary:     "Get a tarif by ID",
		Tags:        []string{"Tarifs"},
	}, func(ctx context.Context, input *TarifIDInput) (*TarifOutput, error) {
		tf, err := svc.GetTarif(ctx, middleware.TenantFromContext(ctx), input.ID)
		if err != nil {
			return nil, problem(err, "failed to get tarif")
		}
		return &TarifOutput{Body: tf}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tarif",
		Method:      http.MethodPut,
		Path:        "/tarifs/{id}",
		Summary:     "Replace a tarif",
		Description: "Existing seances keep the amount copied when they were booked.",
		Tags:        []string{"Tarifs"},
	}, func(ctx context.Context, input *UpdateTarifInput) (*TarifOutput, error) {
		tf, err := svc.UpdateTarif(ctx, middleware.TenantFromContext(ctx), input.ID, input.Body.tarif())
		if err != nil {
			return nil, problem(err, "failed to update tarif")
		}
		return &TarifOutput{Body: tf}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-tarif",
		Method:        http.MethodDelete,
		Path:          "/tarifs/{id}",
		Summary:       "Delete an unreferenced tarif",
		Tags:          []string{"Tarifs"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *TarifIDInput) (*struct{}, error) {
		if err := svc.DeleteTarif(ctx, middleware.TenantFromContext(ctx), input.ID); err != nil {
			return nil, problem(err, "failed to delete tarif")
		}
		return nil, nil
	})
}
