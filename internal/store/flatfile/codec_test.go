package flatfile_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/cabinet/internal/store/flatfile"
)

var testSchema = flatfile.Schema{
	File:     "test.tsv",
	Fields:   []string{"id", "label", "amount", "minutes"},
	Currency: map[string]bool{"amount": true},
	Numeric:  map[string]bool{"minutes": true},
}

func TestEncode_Format(t *testing.T) {
	t.Parallel()

	got := flatfile.Encode(testSchema, []flatfile.Record{
		{"id": "A", "label": "Consultation", "amount": decimal.NewFromInt(60), "minutes": decimal.NewFromInt(45)},
		{"id": "B", "label": nil, "amount": decimal.RequireFromString("12.5"), "minutes": nil},
	})

	want := "id\tlabel\tamount\tminutes\r\n" +
		"A\tConsultation\t60.00\t45\r\n" +
		"B\t\t12.50\t\r\n"
	assert.Equal(t, want, string(got))
}

func TestEncode_FlattensSeparators(t *testing.T) {
	t.Parallel()

	got := flatfile.Encode(testSchema, []flatfile.Record{
		{"id": "A", "label": "line one\r\nline two\tcol"},
	})

	recs := flatfile.Decode(testSchema, got)
	require.Len(t, recs, 1)
	assert.Equal(t, "line one line two col", recs[0].String("label"))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want []flatfile.Record
	}{
		{
			name: "header only",
			data: "id\tlabel\tamount\tminutes\r\n",
			want: []flatfile.Record{},
		},
		{
			name: "empty input",
			data: "",
			want: nil,
		},
		{
			name: "null words",
			data: "id\tlabel\tamount\tminutes\r\nA\tnull\tundefined\t\r\n",
			want: []flatfile.Record{{"id": "A", "label": nil, "amount": nil, "minutes": nil}},
		},
		{
			name: "missing trailing fields",
			data: "h\r\nA\tx\r\n",
			want: []flatfile.Record{{"id": "A", "label": "x", "amount": nil, "minutes": nil}},
		},
		{
			name: "all null record dropped",
			data: "h\r\n\t\t\t\r\nnull\tnull\r\n",
			want: []flatfile.Record{},
		},
		{
			name: "blank lines and LF endings",
			data: "h\n\nA\tx\t1\t2\n   \n",
			want: []flatfile.Record{{"id": "A", "label": "x", "amount": decimal.NewFromInt(1), "minutes": decimal.NewFromInt(2)}},
		},
		{
			name: "comma decimal",
			data: "h\r\nA\tx\t60,5\t\r\n",
			want: []flatfile.Record{{"id": "A", "label": "x", "amount": decimal.RequireFromString("60.5"), "minutes": nil}},
		},
		{
			name: "padded text is kept",
			data: "h\r\nA\t  \t\t\r\nB\t undefined\t\t\r\n",
			want: []flatfile.Record{
				{"id": "A", "label": "  ", "amount": nil, "minutes": nil},
				{"id": "B", "label": " undefined", "amount": nil, "minutes": nil},
			},
		},
		{
			name: "padded numbers are trimmed",
			data: "h\r\nA\tx\t 60.00 \t   \r\n",
			want: []flatfile.Record{{"id": "A", "label": "x", "amount": decimal.NewFromInt(60), "minutes": nil}},
		},
		{
			name: "non numeric amount becomes null",
			data: "h\r\nA\tx\tabc\t\r\n",
			want: []flatfile.Record{{"id": "A", "label": "x", "amount": nil, "minutes": nil}},
		},
		{
			name: "byte order mark",
			data: "\ufeffid\tlabel\r\nA\r\n",
			want: []flatfile.Record{{"id": "A", "label": nil, "amount": nil, "minutes": nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := flatfile.Decode(testSchema, []byte(tt.data))
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				for _, f := range testSchema.Fields {
					w, g := tt.want[i][f], got[i][f]
					if wd, ok := w.(decimal.Decimal); ok {
						gd, ok := g.(decimal.Decimal)
						require.True(t, ok, "field %s: want decimal, got %T", f, g)
						assert.True(t, wd.Equal(gd), "field %s: want %s, got %s", f, wd, gd)
						continue
					}
					assert.Equal(t, w, g, "field %s", f)
				}
			}
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	in := []flatfile.Record{
		{"id": "DUPONT_MARIE", "label": "Séance individuelle", "amount": decimal.RequireFromString("60.00"), "minutes": decimal.NewFromInt(45)},
		{"id": "X", "label": nil, "amount": decimal.RequireFromString("0.10"), "minutes": nil},
		{"id": "Y", "label": "émoji ✓", "amount": nil, "minutes": decimal.NewFromInt(0)},
		{"id": "Z", "label": "   ", "amount": nil, "minutes": nil},
		{"id": "W", "label": " null ", "amount": nil, "minutes": nil},
	}

	out := flatfile.Decode(testSchema, flatfile.Encode(testSchema, in))
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].String("id"), out[i].String("id"))
		assert.Equal(t, in[i]["label"], out[i]["label"])
		for _, f := range []string{"amount", "minutes"} {
			wd, wok := in[i].Decimal(f)
			gd, gok := out[i].Decimal(f)
			assert.Equal(t, wok, gok, "field %s", f)
			if wok {
				assert.True(t, wd.Equal(gd), "field %s: want %s, got %s", f, wd, gd)
			}
		}
	}
}

func TestSchema_Header(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "id\tlibelle\tmontant\tduree", flatfile.TarifSchema.Header())
	assert.Len(t, flatfile.ClientSchema.Fields, 11)
	assert.Len(t, flatfile.SeanceSchema.Fields, 11)
}
