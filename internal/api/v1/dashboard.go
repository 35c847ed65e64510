package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/cabinet/internal/billing"
	"github.com/gosuda/cabinet/internal/server/middleware"
)

type DashboardInput struct {
	Year int `query:"year" minimum:"0" maximum:"9999" doc:"Defaults to the current year"`
}

type DashboardOutput struct {
	Body *billing.Summary
}

func RegisterDashboardRoutes(api huma.API, svc DashboardService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Seance counts and amounts for a year",
		Tags:        []string{"Dashboard"},
	}, func(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
		year := input.Year
		if year == 0 {
			year = time.Now().Year()
		}
		sum, err := svc.Summary(ctx, middleware.TenantFromContext(ctx), year)
		if err != nil {
			return nil, problem(err, "failed to build dashboard")
		}
		return &DashboardOutput{Body: sum}, nil
	})
}
