package schema

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	columns := []string{"InvoiceId", " Cash_Amo ", "UPI_Amo", "TotalAmount"}

	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"exact", []string{"InvoiceId"}, "InvoiceId"},
		{"case insensitive", []string{"invoiceid"}, "InvoiceId"},
		{"stray spaces survive", []string{"cash_amo"}, " Cash_Amo "},
		{"first candidate wins", []string{"TotalAmount", "Cash_Amo"}, "TotalAmount"},
		{"later candidate", []string{"CashAmount", "Cash_Amo"}, " Cash_Amo "},
		{"no match", []string{"Discount"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(columns, tt.candidates...))
		})
	}
}

func TestResolve(t *testing.T) {
	columns := []string{"InvoiceId", " Cash_Amo ", "PName"}
	fields := []Field{
		{Name: "InvoiceId", Aliases: []string{"InvoiceId"}, Required: true},
		{Name: "CashAmount", Aliases: []string{"CashAmount", "Cash_Amo"}},
		{Name: "Discount", Aliases: []string{"Discount", "DiscountAmount"}},
		{Name: "PName", Aliases: []string{"PName"}},
	}

	t.Run("optional unresolved fields are skipped", func(t *testing.T) {
		record, err := Resolve(columns, fields, map[string]any{
			"InvoiceId":  "PM2504501",
			"CashAmount": 150.0,
			"Discount":   10.0,
		})
		require.NoError(t, err)
		assert.Equal(t, goqu.Record{
			"InvoiceId":  "PM2504501",
			" Cash_Amo ": 150.0,
		}, record)
	})

	t.Run("absent values are skipped", func(t *testing.T) {
		record, err := Resolve(columns, fields, map[string]any{
			"InvoiceId": "PM2504501",
		})
		require.NoError(t, err)
		assert.Equal(t, goqu.Record{"InvoiceId": "PM2504501"}, record)
	})

	t.Run("missing required columns abort with names", func(t *testing.T) {
		required := []Field{
			{Name: "SaleId", Aliases: []string{"SaleId"}, Required: true},
			{Name: "InvoiceId", Aliases: []string{"InvoiceId"}, Required: true},
			{Name: "BatchNo", Aliases: []string{"BatchNo"}, Required: true},
		}
		_, err := Resolve([]string{"InvoiceId"}, required, map[string]any{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SaleId")
		assert.Contains(t, err.Error(), "BatchNo")
		assert.NotContains(t, err.Error(), "InvoiceId,")
	})
}

func TestInsertSQL(t *testing.T) {
	record := goqu.Record{" Cash_Amo ": 150.0}
	query, args, err := InsertSQL("MedicineInvoices", record)
	require.NoError(t, err)
	assert.Contains(t, query, `INSERT INTO "MedicineInvoices"`)
	assert.Contains(t, query, `" Cash_Amo "`)
	assert.Equal(t, []any{150.0}, args)
}
