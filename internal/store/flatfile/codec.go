package flatfile

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	fieldSep   = "\t"
	lineEnding = "\r\n"
	utf8BOM    = "\ufeff"
)

// Record is one parsed line. Values are nil, string or decimal.Decimal.
type Record map[string]any

// String returns the text value of field, or "" for null.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	default:
		return ""
	}
}

// Decimal returns the numeric value of field and whether it was set.
func (r Record) Decimal(field string) (decimal.Decimal, bool) {
	v, ok := r[field].(decimal.Decimal)
	return v, ok
}

// Schema is the canonical column list of one entity file.
type Schema struct {
	File     string
	Fields   []string
	Currency map[string]bool // numeric, written with two decimals
	Numeric  map[string]bool // numeric, written as-is
}

// Header returns the header line without terminator.
func (s Schema) Header() string { return strings.Join(s.Fields, fieldSep) }

// Decode parses a delimited block. The first line is the header and is
// ignored; columns are mapped positionally onto s.Fields. Blank lines and
// all-null records are dropped.
func Decode(s Schema, data []byte) []Record {
	text := strings.TrimPrefix(string(data), utf8BOM)
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return nil
	}

	out := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := strings.Split(line, fieldSep)
		rec := make(Record, len(s.Fields))
		empty := true
		for i, field := range s.Fields {
			var raw string
			if i < len(cells) {
				raw = cells[i]
			}
			v := s.decodeValue(field, raw)
			if v != nil {
				empty = false
			}
			rec[field] = v
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

// Encode writes the header and one CRLF-terminated line per record.
func Encode(s Schema, records []Record) []byte {
	var b bytes.Buffer
	b.WriteString(s.Header())
	b.WriteString(lineEnding)
	for _, rec := range records {
		for i, field := range s.Fields {
			if i > 0 {
				b.WriteString(fieldSep)
			}
			b.WriteString(s.encodeValue(field, rec[field]))
		}
		b.WriteString(lineEnding)
	}
	return b.Bytes()
}

func (s Schema) decodeValue(field, raw string) any {
	if isNull(raw) {
		return nil
	}
	if !s.Currency[field] && !s.Numeric[field] {
		return raw
	}
	num := strings.TrimSpace(raw)
	if isNull(num) {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(num, ",", "."))
	if err != nil {
		log.Debug().Str("file", s.File).Str("field", field).Str("value", raw).Msg("flatfile: dropping non-numeric value")
		return nil
	}
	return d
}

func (s Schema) encodeValue(field string, v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		if s.Currency[field] {
			return val.StringFixed(2)
		}
		return val.String()
	case int:
		if s.Currency[field] {
			return decimal.NewFromInt(int64(val)).StringFixed(2)
		}
		return strconv.Itoa(val)
	case float64:
		if s.Currency[field] {
			return decimal.NewFromFloat(val).StringFixed(2)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return flatten(val)
	default:
		return ""
	}
}

// isNull matches raw exactly; padded text such as " null " is a value.
func isNull(raw string) bool {
	switch raw {
	case "", "null", "undefined":
		return true
	default:
		return false
	}
}

// flatten keeps one record per line: separators and line breaks inside a
// text value become a single space each. This is lossy.
var flattener = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", fieldSep, " ")

func flatten(s string) string { return flattener.Replace(s) }
