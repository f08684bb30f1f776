package reports

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByInvoice(t *testing.T) {
	rows := []SaleRow{
		{SaleID: "PM250450101", InvoiceID: "PM2504501"},
		{SaleID: "PM250450201", InvoiceID: "PM2504502"},
		{SaleID: "PM250450102", InvoiceID: "PM2504501"},
		{SaleID: "PM250450202", InvoiceID: "PM2504502"},
	}
	groups := GroupByInvoice(rows)
	require.Len(t, groups, 2)

	// Invoices keep first-seen order, rows keep input order.
	assert.Equal(t, "PM2504501", groups[0].InvoiceID)
	assert.Equal(t, "PM2504502", groups[1].InvoiceID)
	require.Len(t, groups[0].Rows, 2)
	assert.Equal(t, "PM250450101", groups[0].Rows[0].SaleID)
	assert.Equal(t, "PM250450102", groups[0].Rows[1].SaleID)
}

func TestGroupByInvoiceEmpty(t *testing.T) {
	assert.Empty(t, GroupByInvoice(nil))
}

func makeGroups(n int) []InvoiceGroup {
	groups := make([]InvoiceGroup, n)
	for i := range groups {
		groups[i].InvoiceID = fmt.Sprintf("PM25001%02d", i+1)
	}
	return groups
}

func TestPaginate(t *testing.T) {
	groups := makeGroups(25)

	t.Run("first page", func(t *testing.T) {
		page := Paginate(groups, 1, PageSize)
		assert.Len(t, page.Groups, 10)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 3, page.Pages)
		assert.Equal(t, 25, page.Total)
		assert.True(t, page.HasNext)
		assert.False(t, page.HasPrev)
	})

	t.Run("last page is partial", func(t *testing.T) {
		page := Paginate(groups, 3, PageSize)
		assert.Len(t, page.Groups, 5)
		assert.False(t, page.HasNext)
		assert.True(t, page.HasPrev)
	})

	t.Run("page zero clamps to first", func(t *testing.T) {
		page := Paginate(groups, 0, PageSize)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("page past end clamps to last", func(t *testing.T) {
		page := Paginate(groups, 99, PageSize)
		assert.Equal(t, 3, page.Page)
		assert.Len(t, page.Groups, 5)
	})

	t.Run("empty set is one empty page", func(t *testing.T) {
		page := Paginate(nil, 1, PageSize)
		assert.Empty(t, page.Groups)
		assert.Equal(t, 1, page.Pages)
		assert.False(t, page.HasNext)
		assert.False(t, page.HasPrev)
	})
}

func TestLowStock(t *testing.T) {
	tests := []struct {
		name  string
		mtype string
		stock int64
		want  bool
	}{
		{"tablets under hundred", "Tablets", 99, true},
		{"tablets at hundred", "Tablets", 100, false},
		{"syrup under ten", "Syrup", 9, true},
		{"syrup at ten", "Syrup", 10, false},
		{"untyped under ten", "", 9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LowStock(tt.mtype, tt.stock))
		})
	}
}

func TestDaysToExpiry(t *testing.T) {
	now := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)

	t.Run("future month", func(t *testing.T) {
		days, ok := DaysToExpiry("2025-10", now)
		require.True(t, ok)
		assert.Equal(t, 76, days)
	})

	t.Run("past month is negative", func(t *testing.T) {
		days, ok := DaysToExpiry("2025-06", now)
		require.True(t, ok)
		assert.Less(t, days, 0)
	})

	t.Run("no info", func(t *testing.T) {
		_, ok := DaysToExpiry("No info", now)
		assert.False(t, ok)
	})

	t.Run("too short", func(t *testing.T) {
		_, ok := DaysToExpiry("2025", now)
		assert.False(t, ok)
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := DaysToExpiry("not-a-date", now)
		assert.False(t, ok)
	})
}

func TestAnnotateAndSummarize(t *testing.T) {
	now := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)
	rows := []StockRow{
		{MedicineName: "Paracetamol", Type: "Tablets", CurrentStock: 50, ClosestToExpiry: "2025-08"},
		{MedicineName: "Cough Syrup", Type: "Syrup", CurrentStock: 20, ClosestToExpiry: "No info"},
		{MedicineName: "Insulin", Type: "Injection", CurrentStock: 5, ClosestToExpiry: "2026-01"},
	}

	Annotate(rows, now)

	assert.True(t, rows[0].LowStock)
	require.NotNil(t, rows[0].DaysToExpiry)
	assert.True(t, rows[0].NearExpiry)

	assert.False(t, rows[1].LowStock)
	assert.Nil(t, rows[1].DaysToExpiry)
	assert.False(t, rows[1].NearExpiry)

	assert.True(t, rows[2].LowStock)
	assert.False(t, rows[2].NearExpiry)

	stats := Summarize(rows)
	assert.Equal(t, Stats{TotalMedicines: 3, LowStockCount: 2, NearExpiry: 1}, stats)

	// Annotating again must not change the outcome.
	Annotate(rows, now)
	assert.Equal(t, stats, Summarize(rows))
}
