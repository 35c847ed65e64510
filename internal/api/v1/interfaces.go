package v1

import (
	"context"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/billing"
	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// ClientService is the client half of the billing core.
// *billing.Service satisfies this interface.
type ClientService interface {
	ListClients(ctx context.Context, t tenant.ID) ([]*domain.Client, error)
	GetClient(ctx context.Context, t tenant.ID, id string) (*domain.Client, error)
	CreateClient(ctx context.Context, t tenant.ID, c *domain.Client) (*domain.Client, error)
	UpdateClient(ctx context.Context, t tenant.ID, id string, c *domain.Client) (*domain.Client, error)
	DeleteClient(ctx context.Context, t tenant.ID, id string) error
}

// TarifService is the tarif half of the billing core.
// *billing.Service satisfies this interface.
type TarifService interface {
	ListTarifs(ctx context.Context, t tenant.ID) ([]*domain.Tarif, error)
	GetTarif(ctx context.Context, t tenant.ID, id string) (*domain.Tarif, error)
	CreateTarif(ctx context.Context, t tenant.ID, tf *domain.Tarif) (*domain.Tarif, error)
	UpdateTarif(ctx context.Context, t tenant.ID, id string, tf *domain.Tarif) (*domain.Tarif, error)
	DeleteTarif(ctx context.Context, t tenant.ID, id string) error
}

// SeanceService drives the seance lifecycle. The client and tarif listings
// feed the spreadsheet export.
// *billing.Service satisfies this interface.
type SeanceService interface {
	ListSeances(ctx context.Context, t tenant.ID) ([]*domain.Seance, error)
	ListClients(ctx context.Context, t tenant.ID) ([]*domain.Client, error)
	ListTarifs(ctx context.Context, t tenant.ID) ([]*domain.Tarif, error)
	GetSeance(ctx context.Context, t tenant.ID, id string) (*domain.Seance, error)
	CreateSeance(ctx context.Context, t tenant.ID, in billing.SeanceInput) (*domain.Seance, error)
	UpdateSeance(ctx context.Context, t tenant.ID, id string, in billing.SeanceInput) (*domain.Seance, error)
	UpdateStatus(ctx context.Context, t tenant.ID, id string, status domain.SeanceStatus, mode, date string) (*domain.Seance, error)
	DeleteSeance(ctx context.Context, t tenant.ID, id string) error
	GenerateInvoice(ctx context.Context, t tenant.ID, id string) (*domain.Seance, *domain.Document, error)
	GenerateQuote(ctx context.Context, t tenant.ID, id string) (*domain.Seance, *domain.Document, error)
}

// DocumentService reads issued invoices and quotes.
// *billing.Service satisfies this interface.
type DocumentService interface {
	Document(ctx context.Context, t tenant.ID, number string) (*domain.Document, error)
}

// SettingsService reads and patches the tenant settings.
// *billing.Service satisfies this interface.
type SettingsService interface {
	Settings(ctx context.Context, t tenant.ID) (domain.Settings, error)
	UpdateSettings(ctx context.Context, t tenant.ID, patch []byte) (domain.Settings, error)
	RecordOAuth(ctx context.Context, t tenant.ID, email, name string, scopes []string) error
}

// DashboardService aggregates a year of activity.
// *billing.Service satisfies this interface.
type DashboardService interface {
	Summary(ctx context.Context, t tenant.ID, year int) (*billing.Summary, error)
}

// DocumentSender mails a document to its client.
// *notify.Notifier satisfies this interface.
type DocumentSender interface {
	SendDocument(ctx context.Context, doc *domain.Document) (string, error)
}

// Renderer turns a document into a standalone HTML page. render.HTML has
// this signature.
type Renderer func(doc *domain.Document) ([]byte, error)

// AuthService runs the Google login flow.
// *auth.Service satisfies this interface.
type AuthService interface {
	Enabled() bool
	LoginURL(returnTo string) (string, error)
	Complete(ctx context.Context, code, state string) (*auth.Session, string, error)
	Logout(ctx context.Context, id string) error
}
