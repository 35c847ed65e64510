package domain

type ClientStatus string

const (
	ClientActive   ClientStatus = "actif"
	ClientInactive ClientStatus = "inactif"
)

// Client is a patient of the practice. ID is derived from the name on first
// save and never changes afterwards.
type Client struct {
	ID             string       `json:"id"`
	Nom            string       `json:"nom" validate:"required,max=100"`
	Prenom         string       `json:"prenom" validate:"max=100"`
	Telephone      string       `json:"telephone,omitempty" validate:"max=40"`
	Email          string       `json:"email,omitempty" validate:"omitempty,email"`
	Adresse        string       `json:"adresse,omitempty"`
	Ville          string       `json:"ville,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	DefaultTarifID string       `json:"defaultTarifId,omitempty"` // weak reference
	Statut         ClientStatus `json:"statut" validate:"oneof=actif inactif"`
	DateCreation   string       `json:"dateCreation"` // YYYY-MM-DD, immutable once set
}

// FullName returns "Prenom Nom", or "Inconnu" for a blank client.
func (c *Client) FullName() string {
	switch {
	case c == nil || (c.Nom == "" && c.Prenom == ""):
		return UnknownLabel
	case c.Prenom == "":
		return c.Nom
	case c.Nom == "":
		return c.Prenom
	default:
		return c.Prenom + " " + c.Nom
	}
}

// UnknownLabel is displayed in place of a weak reference that no longer resolves.
const UnknownLabel = "Inconnu"
