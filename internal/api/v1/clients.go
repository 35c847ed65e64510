package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/server/middleware"
)

// ClientBody is the writable part of a client. The id and creation date are
// assigned by the server.
type ClientBody struct {
	Nom            string `json:"nom" minLength:"1" maxLength:"100" doc:"Last name"`
	Prenom         string `json:"prenom,omitempty" maxLength:"100" doc:"First name"`
	Telephone      string `json:"telephone,omitempty" maxLength:"40"`
	Email          string `json:"email,omitempty" maxLength:"255"`
	Adresse        string `json:"adresse,omitempty"`
	Ville          string `json:"ville,omitempty"`
	Notes          string `json:"notes,omitempty"`
	DefaultTarifID string `json:"defaultTarifId,omitempty" doc:"Tarif preselected for new seances"`
	Statut         string `json:"statut,omitempty" enum:"actif,inactif" doc:"Defaults to actif"`
}

func (b *ClientBody) client() *domain.Client {
	return &domain.Client{
		Nom:            b.Nom,
		Prenom:         b.Prenom,
		Telephone:      b.Telephone,
		Email:          b.Email,
		Adresse:        b.Adresse,
		Ville:          b.Ville,
		Notes:          b.Notes,
		DefaultTarifID: b.DefaultTarifID,
		Statut:         domain.ClientStatus(b.Statut),
	}
}

type ListClientsInput struct{}

type ListClientsOutput struct {
	Body []*domain.Client
}

type ClientIDInput struct {
	ID string `path:"id" doc:"Client ID"`
}

type ClientOutput struct {
	Body *domain.Client
}

type CreateClientInput struct {
	Body ClientBody
}

type UpdateClientInput struct {
	ID   string `path:"id" doc:"Client ID"`
	Body ClientBody
}

func RegisterClientRoutes(api huma.API, svc ClientService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-clients",
		Method:      http.MethodGet,
		Path:        "/clients",
		Summary:     "List clients",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, _ *ListClientsInput) (*ListClientsOutput, error) {
		clients, err := svc.ListClients(ctx, middleware.TenantFromContext(ctx))
		if err != nil {
			return nil, problem(err, "failed to list clients")
		}
		return &ListClientsOutput{Body: clients}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-client",
		Method:      http.MethodPost,
		Path:        "/clients",
		Summary:     "Create a client",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *CreateClientInput) (*ClientOutput, error) {
		c, err := svc.CreateClient(ctx, middleware.TenantFromContext(ctx), input.Body.client())
		if err != nil {
			return nil, problem(err, "failed to create client")
		}
		return &ClientOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-client",
		Method:      http.MethodGet,
		Path:        "/clients/{id}",
		Summary:     "Get a client by ID",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *ClientIDInput) (*ClientOutput, error) {
		c, err := svc.GetClient(ctx, middleware.TenantFromContext(ctx), input.ID)
		if err != nil {
			return nil, problem(err, "failed to get client")
		}
		return &ClientOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-client",
		Method:      http.MethodPut,
		Path:        "/clients/{id}",
		Summary:     "Replace a client's details",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *UpdateClientInput) (*ClientOutput, error) {
		c, err := svc.UpdateClient(ctx, middleware.TenantFromContext(ctx), input.ID, input.Body.client())
		if err != nil {
			return nil, problem(err, "failed to update client")
		}
		return &ClientOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-client",
		Method:        http.MethodDelete,
		Path:          "/clients/{id}",
		Summary:       "Delete a client with no seances",
		Tags:          []string{"Clients"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ClientIDInput) (*struct{}, error) {
		if err := svc.DeleteClient(ctx, middleware.TenantFromContext(ctx), input.ID); err != nil {
			return nil, problem(err, "failed to delete client")
		}
		return nil, nil
	})
}
