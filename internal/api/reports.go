package api

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"medbill/m/internal/reports"
)

const stockQuery = `
    SELECT MName,
           CurrentStock,
           COALESCE(MType, '') AS MType,
           LastDeliveryDate,
           ClosestToExpiry,
           COALESCE(MCompany, '') AS MCompany
    FROM vw_CurrentStocks
    ORDER BY MName`

func (h *Handler) fetchStock() ([]reports.StockRow, error) {
	rows := []reports.StockRow{}
	if err := h.db.Select(&rows, stockQuery); err != nil {
		return nil, dbErr(err, "failed to fetch stock report", stockQuery)
	}
	return rows, nil
}

// filterStock narrows rows by the optional medicine, type and company
// query parameters. Matching is case-insensitive substring for the
// medicine name and exact for the rest.
func filterStock(rows []reports.StockRow, medicine, mtype, company string) []reports.StockRow {
	medicine = strings.ToLower(strings.TrimSpace(medicine))
	mtype = strings.TrimSpace(mtype)
	company = strings.TrimSpace(company)
	if medicine == "" && mtype == "" && company == "" {
		return rows
	}

	filtered := rows[:0:0]
	for _, row := range rows {
		if medicine != "" && !strings.Contains(strings.ToLower(row.MedicineName), medicine) {
			continue
		}
		if mtype != "" && !strings.EqualFold(row.Type, mtype) {
			continue
		}
		if company != "" && !strings.EqualFold(row.Company, company) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func (h *Handler) stockReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchStock()
	if err != nil {
		respondAppErr(w, err)
		return
	}

	q := r.URL.Query()
	rows = filterStock(rows, q.Get("medicine_filter"), q.Get("type_filter"), q.Get("company_filter"))
	reports.Annotate(rows, h.now())

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    rows,
		"count":   len(rows),
	})
}

func (h *Handler) stockFilters(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchStock()
	if err != nil {
		respondAppErr(w, err)
		return
	}

	uniq := func(pick func(reports.StockRow) string) []string {
		seen := make(map[string]struct{})
		var out []string
		for _, row := range rows {
			val := strings.TrimSpace(pick(row))
			if val == "" {
				continue
			}
			if _, ok := seen[val]; ok {
				continue
			}
			seen[val] = struct{}{}
			out = append(out, val)
		}
		sort.Strings(out)
		return out
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"medicines": uniq(func(r reports.StockRow) string { return r.MedicineName }),
		"types":     uniq(func(r reports.StockRow) string { return r.Type }),
		"companies": uniq(func(r reports.StockRow) string { return r.Company }),
	})
}

func (h *Handler) stockStatistics(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchStock()
	if err != nil {
		respondAppErr(w, err)
		return
	}

	q := r.URL.Query()
	rows = filterStock(rows, q.Get("medicine_filter"), q.Get("type_filter"), q.Get("company_filter"))
	reports.Annotate(rows, h.now())
	stats := reports.Summarize(rows)

	respondJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"total_medicines":   stats.TotalMedicines,
		"low_stock_count":   stats.LowStockCount,
		"near_expiry_count": stats.NearExpiry,
	})
}

const salesBaseQuery = `
    SELECT ph.SaleId, ph.InvoiceId, mi.InvoiceDate, mi.UHId, mi.PName, mi.PhoneNo,
           ph.MId, ml.MName, ph.Mstock, ph.MTotal, ph.BTotal,
           mi.TotalAmount, mi.Discount, mi.PaymentMode
    FROM Pharmacy ph
    JOIN MedicineInvoices mi ON mi.InvoiceId = ph.InvoiceId
    LEFT JOIN MedicineList ml ON TRIM(ml.MId) = TRIM(ph.MId)`

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := strings.TrimSpace(q.Get("date"))
	field := strings.ToLower(strings.TrimSpace(q.Get("field")))
	term := strings.TrimSpace(q.Get("term"))
	page, _ := strconv.Atoi(q.Get("page"))

	var (
		clauses []string
		args    []any
	)
	if field != "" && term != "" {
		switch field {
		case "name":
			clauses = append(clauses, `mi.PName LIKE ?`)
			args = append(args, "%"+strings.ToUpper(term)+"%")
		case "uhid":
			clauses = append(clauses, `mi.UHId = ?`)
			args = append(args, strings.ToUpper(term))
		case "invoiceid":
			clauses = append(clauses, `ph.InvoiceId = ?`)
			args = append(args, strings.ToUpper(term))
		case "phoneno":
			clauses = append(clauses, `mi.PhoneNo LIKE ?`)
			args = append(args, "%"+term+"%")
		default:
			respondError(w, http.StatusBadRequest, "field must be one of name, uhid, invoiceid, phoneno")
			return
		}
	} else {
		if date == "" {
			date = h.now().Format("2006-01-02")
		}
		clauses = append(clauses, `substr(TRIM(mi.InvoiceDate), 1, 10) = ?`)
		args = append(args, date)
	}

	query := salesBaseQuery + ` WHERE ` + strings.Join(clauses, ` AND `) +
		` ORDER BY mi.InvoiceDate DESC, ph.SaleId ASC`

	rows := []reports.SaleRow{}
	if err := h.db.Select(&rows, query, args...); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch sales report", query, args...))
		return
	}

	result := reports.Paginate(reports.GroupByInvoice(rows), page, reports.PageSize)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"data":     result.Groups,
		"page":     result.Page,
		"pages":    result.Pages,
		"total":    result.Total,
		"has_next": result.HasNext,
		"has_prev": result.HasPrev,
	})
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = h.now().Format("2006-01-02")
	}

	query := `
        SELECT COALESCE(SUM(CashAmount), 0) AS cash,
               COALESCE(SUM(UPIAmount), 0) AS upi,
               COUNT(*) AS invoices
        FROM MedicineInvoices
        WHERE substr(TRIM(InvoiceDate), 1, 10) = ?`
	var summary struct {
		Cash     float64 `db:"cash"`
		UPI      float64 `db:"upi"`
		Invoices int     `db:"invoices"`
	}
	if err := h.db.Get(&summary, query, date); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch sales summary", query, date))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"date":          date,
		"cash_total":    summary.Cash,
		"upi_total":     summary.UPI,
		"grand_total":   summary.Cash + summary.UPI,
		"invoice_count": summary.Invoices,
	})
}
