// Package reports holds the sales-grouping, pagination and stock-flag
// computations behind the reporting endpoints.
package reports

import (
	"strconv"
	"time"
)

// PageSize is the fixed number of invoice groups per sales page.
const PageSize = 10

// SaleRow is one pharmacy line item joined with its invoice header.
type SaleRow struct {
	SaleID       string  `db:"SaleId" json:"SaleId"`
	InvoiceID    string  `db:"InvoiceId" json:"InvoiceId"`
	InvoiceDate  string  `db:"InvoiceDate" json:"InvoiceDate"`
	UHID         *string `db:"UHId" json:"UHId"`
	PatientName  *string `db:"PName" json:"PName"`
	PhoneNo      *string `db:"PhoneNo" json:"PhoneNo"`
	MedicineID   *string `db:"MId" json:"MId"`
	MedicineName *string `db:"MName" json:"MName"`
	Quantity     int64   `db:"Mstock" json:"Quantity"`
	ItemTotal    float64 `db:"MTotal" json:"ItemTotal"`
	RunningTotal float64 `db:"BTotal" json:"RunningTotal"`
	TotalAmount  float64 `db:"TotalAmount" json:"TotalAmount"`
	Discount     float64 `db:"Discount" json:"Discount"`
	PaymentMode  *string `db:"PaymentMode" json:"PaymentMode"`
}

// InvoiceGroup is the rows of one invoice, in their original order.
type InvoiceGroup struct {
	InvoiceID string    `json:"invoice_id"`
	Rows      []SaleRow `json:"rows"`
}

// GroupByInvoice buckets rows by invoice id, preserving both the order
// in which invoices first appear and the row order within each invoice.
func GroupByInvoice(rows []SaleRow) []InvoiceGroup {
	index := make(map[string]int)
	var groups []InvoiceGroup
	for _, row := range rows {
		i, ok := index[row.InvoiceID]
		if !ok {
			i = len(groups)
			index[row.InvoiceID] = i
			groups = append(groups, InvoiceGroup{InvoiceID: row.InvoiceID})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

// Page is one page of invoice groups. Pagination counts distinct
// invoices, not rows.
type Page struct {
	Groups  []InvoiceGroup `json:"groups"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
	Total   int            `json:"total"`
	HasNext bool           `json:"has_next"`
	HasPrev bool           `json:"has_prev"`
}

// Paginate slices groups into the requested page. Page numbers below 1
// clamp to the first page and numbers past the end clamp to the last.
func Paginate(groups []InvoiceGroup, page, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	total := len(groups)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Groups:  groups[start:end],
		Page:    page,
		Pages:   pages,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// StockRow is one vw_CurrentStocks row plus the derived flags.
type StockRow struct {
	MedicineName     string  `db:"MName" json:"MName"`
	CurrentStock     int64   `db:"CurrentStock" json:"CurrentStock"`
	Type             string  `db:"MType" json:"MType"`
	LastDeliveryDate string  `db:"LastDeliveryDate" json:"LastDeliveryDate"`
	ClosestToExpiry  string  `db:"ClosestToExpiry" json:"ClosestToExpiry"`
	Company          string  `db:"MCompany" json:"MCompany"`
	DaysToExpiry     *int    `db:"-" json:"DaysToExpiry"`
	LowStock         bool    `db:"-" json:"LowStock"`
	NearExpiry       bool    `db:"-" json:"NearExpiry"`
}

// DaysToExpiry computes whole days from now until the expiry implied by
// a YYYY-MM prefix, assuming day 30 of that month. The second return is
// false when the value carries no expiry information.
func DaysToExpiry(closest string, now time.Time) (int, bool) {
	if len(closest) < 7 || closest == "No info" {
		return 0, false
	}
	year, err := strconv.Atoi(closest[0:4])
	if err != nil {
		return 0, false
	}
	month, err := strconv.Atoi(closest[5:7])
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}
	expiry := time.Date(year, time.Month(month), 30, 0, 0, 0, 0, now.Location())
	return int(expiry.Sub(now).Hours() / 24), true
}

// LowStock flags a row by its type-dependent threshold: tablets run out
// fast, so anything under 100 counts; everything else flags under 10.
func LowStock(mtype string, stock int64) bool {
	if mtype == "Tablets" {
		return stock < 100
	}
	return stock < 10
}

// Annotate fills the derived flag fields of each row in place.
func Annotate(rows []StockRow, now time.Time) {
	for i := range rows {
		rows[i].LowStock = LowStock(rows[i].Type, rows[i].CurrentStock)
		if days, ok := DaysToExpiry(rows[i].ClosestToExpiry, now); ok {
			d := days
			rows[i].DaysToExpiry = &d
			rows[i].NearExpiry = days < 30
		}
	}
}

// Stats are the headline numbers of the stock report.
type Stats struct {
	TotalMedicines int `json:"total_medicines"`
	LowStockCount  int `json:"low_stock_count"`
	NearExpiry     int `json:"near_expiry_count"`
}

// Summarize counts the annotated rows.
func Summarize(rows []StockRow) Stats {
	stats := Stats{TotalMedicines: len(rows)}
	for _, row := range rows {
		if row.LowStock {
			stats.LowStockCount++
		}
		if row.NearExpiry {
			stats.NearExpiry++
		}
	}
	return stats
}
