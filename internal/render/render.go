// Package render turns document snapshots into standalone HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gosuda/cabinet/internal/domain"
)

//go:embed templates/*.html
var templates embed.FS

var documentTemplate = template.Must(
	template.New("document.html").Funcs(template.FuncMap{
		"euros":     Euros,
		"date":      frenchDate,
		"lineTotal": lineTotal,
	}).ParseFS(templates, "templates/document.html"),
)

// HTML renders an invoice or quote.
func HTML(doc *domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render.HTML %s: %w", doc.Number, err)
	}
	return buf.Bytes(), nil
}

// Euros formats an amount the French way, e.g. "1 234,50 €".
func Euros(m domain.Money) string {
	s := m.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(c)
	}
	b.WriteString("," + frac + " €")
	return b.String()
}

func frenchDate(s string) string {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return s
	}
	return d.Format("02/01/2006")
}

func lineTotal(it domain.LineItem) domain.Money {
	return it.UnitPrice.Times(decimal.NewFromInt(int64(it.Quantity)))
}
