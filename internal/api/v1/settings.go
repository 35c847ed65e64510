package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/server/middleware"
)

type GetSettingsInput struct{}

type SettingsOutput struct {
	Body domain.Settings
}

// PatchSettingsInput takes a partial settings document. Objects merge
// recursively; secret-like keys are dropped.
type PatchSettingsInput struct {
	RawBody []byte `contentType:"application/json"`
}

func RegisterSettingsRoutes(api huma.API, svc SettingsService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-settings",
		Method:      http.MethodGet,
		Path:        "/settings",
		Summary:     "Get the practice settings",
		Tags:        []string{"Settings"},
	}, func(ctx context.Context, _ *GetSettingsInput) (*SettingsOutput, error) {
		st, err := svc.Settings(ctx, middleware.TenantFromContext(ctx))
		if err != nil {
			return nil, problem(err, "failed to read settings")
		}
		return &SettingsOutput{Body: st}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "patch-settings",
		Method:      http.MethodPatch,
		Path:        "/settings",
		Summary:     "Merge changes into the practice settings",
		Description: "Secret-like keys and the oauth group are ignored; the OAuth summary is set by the login flow.",
		Tags:        []string{"Settings"},
	}, func(ctx context.Context, input *PatchSettingsInput) (*SettingsOutput, error) {
		if len(input.RawBody) == 0 {
			return nil, huma.Error400BadRequest("empty settings patch")
		}
		st, err := svc.UpdateSettings(ctx, middleware.TenantFromContext(ctx), input.RawBody)
		if err != nil {
			return nil, problem(err, "failed to update settings")
		}
		return &SettingsOutput{Body: st}, nil
	})
}
