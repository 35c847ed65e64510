package domain

import "time"

// SettingsVersion is bumped whenever a field group is added. Older files are
// upgraded on read by decoding them over DefaultSettings.
const SettingsVersion = 2

// Settings is the per-tenant configuration document.
type Settings struct {
	Version  int              `json:"version"`
	Manager  ManagerProfile   `json:"manager"`
	Legal    LegalMentions    `json:"legal"`
	TVARate  float64          `json:"tvaRate"` // percent, 0 when exempt
	Calendar CalendarSettings `json:"calendar"`
	OAuth    OAuthSummary     `json:"oauth"`
}

type ManagerProfile struct {
	Nom        string `json:"nom"`
	Prenom     string `json:"prenom"`
	Titre      string `json:"titre"`
	Adresse    string `json:"adresse"`
	CodePostal string `json:"codePostal"`
	Ville      string `json:"ville"`
	Telephone  string `json:"telephone"`
	Email      string `json:"email"`
	Siret      string `json:"siret"`
	Adeli      string `json:"adeli"`
}

type LegalMentions struct {
	MentionTVA         string `json:"mentionTva"`
	ConditionsPaiement string `json:"conditionsPaiement"`
	PenalitesRetard    string `json:"penalitesRetard"`
	IndemniteForfait   string `json:"indemniteForfaitaire"`
	DelaiPaiementJours int    `json:"delaiPaiementJours"`
	ValiditeDevisJours int    `json:"validiteDevisJours"`
}

type CalendarSettings struct {
	Enabled         bool   `json:"enabled"`
	ID              string `json:"id"`
	DefaultDuration int    `json:"defaultDuration"` // minutes, used when the tarif has none
}

// OAuthSummary describes the connected Google account. Tokens are never
// part of it.
type OAuthSummary struct {
	Connected   bool       `json:"connected"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Scopes      []string   `json:"scopes,omitempty"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
}

// DefaultSettings returns the settings of a brand new tenant.
func DefaultSettings() Settings {
	return Settings{
		Version: SettingsVersion,
		Manager: ManagerProfile{
			Titre: "Psychopraticien",
		},
		Legal: LegalMentions{
			MentionTVA:         "TVA non applicable, art. 293 B du CGI",
			ConditionsPaiement: "Paiement à réception de facture",
			PenalitesRetard:    "En cas de retard de paiement, pénalités au taux de 3 fois le taux d'intérêt légal.",
			IndemniteForfait:   "Indemnité forfaitaire pour frais de recouvrement : 40 €",
			DelaiPaiementJours: 30,
			ValiditeDevisJours: 30,
		},
		TVARate: 0,
		Calendar: CalendarSettings{
			Enabled:         true,
			ID:              "primary",
			DefaultDuration: 60,
		},
	}
}

// CalendarID returns the configured calendar, falling back to "primary".
func (s *Settings) CalendarID() string {
	if s.Calendar.ID == "" {
		return "primary"
	}
	return s.Calendar.ID
}
