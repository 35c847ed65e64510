package flatfile

// Canonical column lists. Order is the on-disk column order.
var (
	ClientSchema = Schema{
		File: "clients.tsv",
		Fields: []string{
			"id", "nom", "prenom", "telephone", "email", "adresse", "ville",
			"notes", "defaultTarifId", "statut", "dateCreation",
		},
	}

	TarifSchema = Schema{
		File:     "tarifs.tsv",
		Fields:   []string{"id", "libelle", "montant", "duree"},
		Currency: map[string]bool{"montant": true},
		Numeric:  map[string]bool{"duree": true},
	}

	SeanceSchema = Schema{
		File: "seances.tsv",
		Fields: []string{
			"id_seance", "id_client", "date_heure_seance", "id_tarif", "montant_facture",
			"statut_seance", "mode_paiement", "date_paiement", "invoice_number",
			"devis_number", "googleCalendarEventId",
		},
		Currency: map[string]bool{"montant_facture": true},
	}
)
