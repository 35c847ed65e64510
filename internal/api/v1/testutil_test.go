package v1_test

import (
	"context"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/billing"
	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/server/middleware"
	"github.com/gosuda/cabinet/internal/tenant"
)

const marie = tenant.ID("marie.0a1b2c3d")

// ---------------------------------------------------------------------------
// Context helpers, standing in for the session middleware
// ---------------------------------------------------------------------------

func tenantCtx(t tenant.ID) context.Context {
	return middleware.WithTenant(context.Background(), t)
}

func sessionCtx(sess *auth.Session) context.Context {
	ctx := tenantCtx(sess.Tenant)
	ctx = context.WithValue(ctx, middleware.ContextKeySessionID, sess.ID)
	ctx = context.WithValue(ctx, middleware.ContextKeySession, sess)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock billing service
// ---------------------------------------------------------------------------

type mockBilling struct {
	listClientsFunc  func(ctx context.Context, t tenant.ID) ([]*domain.Client, error)
	getClientFunc    func(ctx context.Context, t tenant.ID, id string) (*domain.Client, error)
	createClientFunc func(ctx context.Context, t tenant.ID, c *domain.Client) (*domain.Client, error)
	updateClientFunc func(ctx context.Context, t tenant.ID, id string, c *domain.Client) (*domain.Client, error)
	deleteClientFunc func(ctx context.Context, t tenant.ID, id string) error

	listTarifsFunc  func(ctx context.Context, t tenant.ID) ([]*domain.Tarif, error)
	getTarifFunc    func(ctx context.Context, t tenant.ID, id string) (*domain.Tarif, error)
	createTarifFunc func(ctx context.Context, t tenant.ID, tf *domain.Tarif) (*domain.Tarif, error)
	updateTarifFunc func(ctx context.Context, t tenant.ID, id string, tf *domain.Tarif) (*domain.Tarif, error)
	deleteTarifFunc func(ctx context.Context, t tenant.ID, id string) error

	listSeancesFunc     func(ctx context.Context, t tenant.ID) ([]*domain.Seance, error)
	getSeanceFunc       func(ctx context.Context, t tenant.ID, id string) (*domain.Seance, error)
	createSeanceFunc    func(ctx context.Context, t tenant.ID, in billing.SeanceInput) (*domain.Seance, error)
	updateSeanceFunc    func(ctx context.Context, t tenant.ID, id string, in billing.SeanceInput) (*domain.Seance, error)
	updateStatusFunc    func(ctx context.Context, t tenant.ID, id string, status domain.SeanceStatus, mode, date string) (*domain.Seance, error)
	deleteSeanceFunc    func(ctx context.Context, t tenant.ID, id string) error
	generateInvoiceFunc func(ctx context.Context, t tenant.ID, id string) (*domain.Seance, *domain.Document, error)
	generateQuoteFunc   func(ctx context.Context, t tenant.ID, id string) (*domain.Seance, *domain.Document, error)

	documentFunc       func(ctx context.Context, t tenant.ID, number string) (*domain.Document, error)
	settingsFunc       func(ctx context.Context, t tenant.ID) (domain.Settings, error)
	updateSettingsFunc func(ctx context.Context, t tenant.ID, patch []byte) (domain.Settings, error)
	recordOAuthFunc    func(ctx context.Context, t tenant.ID, email, name string, scopes []string) error
	summaryFunc        func(ctx context.Context, t tenant.ID, year int) (*billing.Summary, error)
}

func (m *mockBilling) ListClients(ctx context.Context, t tenant.ID) ([]*domain.Client, error) {
	return m.listClientsFunc(ctx, t)
}

func (m *mockBilling) GetClient(ctx context.Context, t tenant.ID, id string) (*domain.Client, error) {
	return m.getClientFunc(ctx, t, id)
}

func (m *mockBilling) CreateClient(ctx context.Context, t tenant.ID, c *domain.Client) (*domain.Client, error) {
	return m.createClientFunc(ctx, t, c)
}

func (m *mockBilling) UpdateClient(ctx context.Context, t tenant.ID, id string, c *domain.Client) (*domain.Client, error) {
	return m.updateClientFunc(ctx, t, id, c)
}

func (m *mockBilling) DeleteClient(ctx context.Context, t tenant.ID, id string) error {
	return m.deleteClientFunc(ctx, t, id)
}

func (m *mockBilling) ListTarifs(ctx context.Context, t tenant.ID) ([]*domain.Tarif, error) {
	return m.listTarifsFunc(ctx, t)
}

func (m *mockBilling) GetTarif(ctx context.Context, t tenant.ID, id string) (*domain.Tarif, error) {
	return m.getTarifFunc(ctx, t, id)
}

func (m *mockBilling) CreateTarif(ctx context.Context, t tenant.ID, tf *domain.Tarif) (*domain.Tarif, error) {
	return m.createTarifFunc(ctx, t, tf)
}

func (m *mockBilling) UpdateTarif(ctx context.Context, t tenant.ID, id string, tf *domain.Tarif) (*domain.Tarif, error) {
	return m.updateTarifFunc(ctx, t, id, tf)
}

func (m *mockBilling) DeleteTarif(ctx context.Context, t tenant.ID, id string) error {
	return m.deleteTarifFunc(ctx, t, id)
}

func (m *mockBilling) ListSeances(ctx context.Context, t tenant.ID) ([]*domain.Seance, error) {
	return m.listSeancesFunc(ctx, t)
}

func (m *mockBilling) GetSeance(ctx context.Context, t tenant.ID, id string) (*domain.Seance, error) {
	return m.getSeanceFunc(ctx, t, id)
}

func (m *mockBilling) CreateSeance(ctx context.Context, t tenant.ID, in billing.SeanceInput) (*domain.Seance, error) {
	return m.createSeanceFunc(ctx, t, in)
}

func (m *mockBilling) UpdateSeance(ctx context.Context, t tenant.ID, id string, in billing.SeanceInput) (*domain.Seance, error) {
	return m.updateSeanceFunc(ctx, t, id, in)
}

func (m *mockBilling) UpdateStatus(ctx context.Context, t tenant.ID, id string, status domain.SeanceStatus, mode, date string) (*domain.Seance, error) {
	return m.updateStatusFunc(ctx, t, id, status, mode, date)
}

func (m *mockBilling) DeleteSeance(ctx context.Context, t tenant.ID, id string) error {
	return m.deleteSeanceFunc(ctx, t, id)
}

func (m *mockBilling) GenerateInvoice(ctx context.Context, t tenant.ID, id string) (*domain.Seance, *domain.Document, error) {
	return m.generateInvoiceFunc(ctx, t, id)
}

func (m *mockBilling) GenerateQuote(ctx context.Context, t tenant.ID, id string) (*domain.Seance, *domain.Document, error) {
	return m.generateQuoteFunc(ctx, t, id)
}

func (m *mockBilling) Document(ctx context.Context, t tenant.ID, number string) (*domain.Document, error) {
	return m.documentFunc(ctx, t, number)
}

func (m *mockBilling) Settings(ctx context.Context, t tenant.ID) (domain.Settings, error) {
	return m.settingsFunc(ctx, t)
}

func (m *mockBilling) UpdateSettings(ctx context.Context, t tenant.ID, patch []byte) (domain.Settings, error) {
	return m.updateSettingsFunc(ctx, t, patch)
}

func (m *mockBilling) RecordOAuth(ctx context.Context, t tenant.ID, email, name string, scopes []string) error {
	return m.recordOAuthFunc(ctx, t, email, name, scopes)
}

func (m *mockBilling) Summary(ctx context.Context, t tenant.ID, year int) (*billing.Summary, error) {
	return m.summaryFunc(ctx, t, year)
}

// ---------------------------------------------------------------------------
// Mock auth service
// ---------------------------------------------------------------------------

type mockAuth struct {
	enabled      bool
	loginURLFunc func(returnTo string) (string, error)
	completeFunc func(ctx context.Context, code, state string) (*auth.Session, string, error)
	logoutFunc   func(ctx context.Context, id string) error
}

func (m *mockAuth) Enabled() bool { return m.enabled }

func (m *mockAuth) LoginURL(returnTo string) (string, error) {
	return m.loginURLFunc(returnTo)
}

func (m *mockAuth) Complete(ctx context.Context, code, state string) (*auth.Session, string, error) {
	return m.completeFunc(ctx, code, state)
}

func (m *mockAuth) Logout(ctx context.Context, id string) error {
	return m.logoutFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock document sender
// ---------------------------------------------------------------------------

type mockSender struct {
	sendFunc func(ctx context.Context, doc *domain.Document) (string, error)
}

func (m *mockSender) SendDocument(ctx context.Context, doc *domain.Document) (string, error) {
	return m.sendFunc(ctx, doc)
}
