package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/cabinet/internal/api/v1"
	"github.com/gosuda/cabinet/internal/api/ws"
)

func registerAuthRoutes(api huma.API, deps Deps, cookie v1.CookieConfig) {
	v1.RegisterAuthRoutes(api, deps.Auth, deps.Billing, cookie)
}

func registerAPIRoutes(api huma.API, deps Deps) {
	v1.RegisterClientRoutes(api, deps.Billing)
	v1.RegisterTarifRoutes(api, deps.Billing)
	v1.RegisterSeanceRoutes(api, deps.Billing)
	v1.RegisterDocumentRoutes(api, deps.Billing, deps.Render, deps.Sender)
	v1.RegisterSettingsRoutes(api, deps.Billing)
	v1.RegisterDashboardRoutes(api, deps.Billing)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/seances", hub.ServeSeances)
}
