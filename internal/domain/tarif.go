package domain

import "fmt"

// Tarif is a billable service price definition.
type Tarif struct {
	ID      string `json:"id"`
	Libelle string `json:"libelle" validate:"required,max=200"`
	Montant Money  `json:"montant"`
	Duree   *int   `json:"duree,omitempty" validate:"omitempty,gte=0,lte=1440"` // minutes
}

// DurationMinutes returns the tariff duration, or fallback when unset.
func (t *Tarif) DurationMinutes(fallback int) int {
	if t == nil || t.Duree == nil || *t.Duree <= 0 {
		return fallback
	}
	return *t.Duree
}

// Validate checks field constraints, including a non-negative amount.
func (t *Tarif) Validate() error {
	if err := Validate(t); err != nil {
		return err
	}
	if t.Montant.IsNegative() {
		return fmt.Errorf("montant must be greater than or equal to 0: %w", ErrInvalidInput)
	}
	return nil
}
