package domain

import (
	"context"

	"github.com/gosuda/cabinet/internal/tenant"
)

// FindAll is lenient: a file that cannot be read yields an empty list.
// Load is strict and is what mutation paths use before rewriting a file.

type ClientRepository interface {
	FindAll(ctx context.Context, t tenant.ID) ([]*Client, error)
	Load(ctx context.Context, t tenant.ID) ([]*Client, error)
	FindByID(ctx context.Context, t tenant.ID, id string) (*Client, error)
	Upsert(ctx context.Context, t tenant.ID, c *Client) (*Client, error)
	Delete(ctx context.Context, t tenant.ID, id string) (bool, error)
	SaveAll(ctx context.Context, t tenant.ID, clients []*Client) error
}

type TarifRepository interface {
	FindAll(ctx context.Context, t tenant.ID) ([]*Tarif, error)
	Load(ctx context.Context, t tenant.ID) ([]*Tarif, error)
	FindByID(ctx context.Context, t tenant.ID, id string) (*Tarif, error)
	Upsert(ctx context.Context, t tenant.ID, tf *Tarif) (*Tarif, error)
	Delete(ctx context.Context, t tenant.ID, id string) (bool, error)
	SaveAll(ctx context.Context, t tenant.ID, tarifs []*Tarif) error
}

type SeanceRepository interface {
	FindAll(ctx context.Context, t tenant.ID) ([]*Seance, error)
	Load(ctx context.Context, t tenant.ID) ([]*Seance, error)
	FindByID(ctx context.Context, t tenant.ID, id string) (*Seance, error)
	Upsert(ctx context.Context, t tenant.ID, s *Seance) (*Seance, error)
	Delete(ctx context.Context, t tenant.ID, id string) (bool, error)
	SaveAll(ctx context.Context, t tenant.ID, seances []*Seance) error
}

type SettingsRepository interface {
	Read(ctx context.Context, t tenant.ID) (Settings, error)
	// Write merges a JSON patch over the stored settings and returns the result.
	Write(ctx context.Context, t tenant.ID, patch []byte) (Settings, error)
	Save(ctx context.Context, t tenant.ID, s Settings) error
}

type DocumentRepository interface {
	// Create fails when a file for doc.Number already exists.
	Create(ctx context.Context, t tenant.ID, doc *Document) error
	Exists(ctx context.Context, t tenant.ID, number string) (bool, error)
	Read(ctx context.Context, t tenant.ID, number string) (*Document, error)
	Delete(ctx context.Context, t tenant.ID, number string) error
	// Numbers lists the document numbers of kind present on disk.
	Numbers(ctx context.Context, t tenant.ID, kind DocumentKind) ([]string, error)
}
