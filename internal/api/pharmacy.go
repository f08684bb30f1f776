package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"medbill/m/domain"
	"medbill/m/internal/idgen"
	"medbill/m/internal/schema"
)

func (h *Handler) todayPatients(w http.ResponseWriter, r *http.Request) {
	today := h.now().Format("2006-01-02")
	query := `
        SELECT DISTINCT PName, PhoneNo, UHId
        FROM vw_getOPdetails
        WHERE substr(Date, 1, 10) = ?
        ORDER BY PName`

	type patientRow struct {
		Name    string  `db:"PName" json:"PName"`
		PhoneNo *string `db:"PhoneNo" json:"PhoneNo"`
		UHID    string  `db:"UHId" json:"UHId"`
	}
	patients := []patientRow{}
	if err := h.db.Select(&patients, query, today); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch today's patients", query, today))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    patients,
		"count":   len(patients),
	})
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	query := `
        SELECT MId, MName, MCompany, MType, MRP, PTR, CurrentStock
        FROM MedicineList
        WHERE MRP IS NOT NULL
        ORDER BY MName`
	medicines := []domain.Medicine{}
	if err := h.db.Select(&medicines, query); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch medicines", query))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    medicines,
		"count":   len(medicines),
	})
}

func (h *Handler) medicineByID(w http.ResponseWriter, r *http.Request) {
	mid := strings.TrimSpace(chi.URLParam(r, "mid"))
	if mid == "" {
		respondError(w, http.StatusBadRequest, "medicine id is required")
		return
	}

	query := `
        SELECT MId, MName, MCompany, MType, MRP, PTR, CurrentStock
        FROM MedicineList
        WHERE TRIM(MId) = TRIM(?) COLLATE NOCASE
        LIMIT 1`
	var med domain.Medicine
	err := h.db.Get(&med, query, mid)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	if err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch medicine", query, mid))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"data":     med,
		"batch_no": h.latestBatch(med.Name),
	})
}

func (h *Handler) medicineDetailsByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name parameter is required")
		return
	}

	query := `
        SELECT MId, MName, MCompany, MType, MRP, PTR, CurrentStock
        FROM MedicineList
        WHERE TRIM(MName) = TRIM(?) COLLATE NOCASE
        LIMIT 1`
	var med domain.Medicine
	err := h.db.Get(&med, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "medicine not found")
		return
	}
	if err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch medicine details", query, name))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"data":     med,
		"batch_no": h.latestBatch(med.Name),
	})
}

// latestBatch returns the most recently delivered batch number for a
// medicine, or "" when there is none on record.
func (h *Handler) latestBatch(medicineName string) string {
	var batch sql.NullString
	err := h.db.Get(&batch, `
        SELECT BatchNo
        FROM StockDeliveries
        WHERE TRIM(MName) = TRIM(?) COLLATE NOCASE AND BatchNo IS NOT NULL
        ORDER BY DeliveryDate DESC, id DESC
        LIMIT 1`, medicineName)
	if err != nil || !batch.Valid {
		return ""
	}
	return batch.String
}

func (h *Handler) nextUHID(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name parameter is required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"uhid":    h.ids.NextUHID(name),
	})
}

type invoiceItemRequest struct {
	Medicine string  `json:"medicine"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

type invoiceRequest struct {
	PatientName string               `json:"patient_name"`
	PhoneNo     string               `json:"phone_no"`
	UHID        string               `json:"uhid"`
	Age         *int64               `json:"age"`
	Gender      string               `json:"gender"`
	Comments    string               `json:"comments"`
	Medicines   []invoiceItemRequest `json:"medicines"`
	Discount    float64              `json:"discount"`
	PaymentMode string               `json:"payment_mode"`
	CashAmount  float64              `json:"cash_amount"`
	UPIAmount   float64              `json:"upi_amount"`
}

// Candidate spellings are listed oldest first; the earliest match wins
// so a store carrying both the historical and the modern column keeps
// writing to the historical one.
var invoiceFields = []schema.Field{
	{Name: "InvoiceId", Aliases: []string{"InvoiceId"}, Required: true},
	{Name: "InvoiceDate", Aliases: []string{"InvoiceDate"}, Required: true},
	{Name: "UHId", Aliases: []string{"UHId"}, Required: true},
	{Name: "PName", Aliases: []string{"PName", "PatientName"}, Required: true},
	{Name: "PaymentMode", Aliases: []string{"PaymentMode", "Payment_Mode"}, Required: true},
	{Name: "PhoneNo", Aliases: []string{"PhoneNo", "Phone", "PatientPhone"}},
	{Name: "TotalAmount", Aliases: []string{"TotalAmc", "TotalAmo", "TotalAmount", "TotalAmt"}},
	{Name: "Discount", Aliases: []string{"Discount", "DiscountAmount", "DiscountAmt"}},
	{Name: "CashAmount", Aliases: []string{"Cash_Amo", "Cash_Amount", "CashAmt", "CashAmount"}},
	{Name: "UPIAmount", Aliases: []string{"UPI_Amo", "UPI_Amount", "UPIAmt", "UPIAmount"}},
	{Name: "Comments", Aliases: []string{"Comments", "Remark", "Notes"}},
}

var saleFields = []schema.Field{
	{Name: "SaleId", Aliases: []string{"SaleId", "SaleID", "Sale_Id"}, Required: true},
	{Name: "InvoiceId", Aliases: []string{"InvoiceId", "InvoiceID", "Invoice_Id"}, Required: true},
	{Name: "MId", Aliases: []string{"MId", "MID", "MedicineId", "Medicine_Id"}},
	{Name: "Mstock", Aliases: []string{"Mstock", "MStock", "Stock", "Quantity", "Qty"}},
	{Name: "MTotal", Aliases: []string{"MTotal", "Mtotal", "ItemTotal", "Item_Total"}},
	{Name: "BTotal", Aliases: []string{"BTotal", "Btotal", "RunningTotal", "Running_Total"}},
	{Name: "PName", Aliases: []string{"PName", "PatientName", "Patient_Name"}},
}

// splitPayment normalizes the payment mode and derives cash and UPI
// components that sum to the final amount.
func splitPayment(mode string, final, cash, upi float64) (string, float64, float64) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "upi":
		return "UPI", 0, final
	case "both":
		if cash < 0 {
			cash = 0
		}
		if upi < 0 {
			upi = 0
		}
		if diff := final - cash - upi; diff > 0.01 || diff < -0.01 {
			upi = final - cash
			if upi < 0 {
				upi = 0
			}
		}
		return "Both", cash, upi
	default:
		return "Cash", final, 0
	}
}

// createInvoice records a pharmacy sale: the invoice header into
// MedicineInvoices and one Pharmacy row per line item. Line items are
// isolated; a failing item is logged and skipped so the rest of the
// sale still lands.
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	req.PatientName = strings.TrimSpace(req.PatientName)
	if req.PatientName == "" {
		respondError(w, http.StatusBadRequest, "patient name is required")
		return
	}
	if len(req.Medicines) == 0 {
		respondError(w, http.StatusBadRequest, "at least one medicine is required")
		return
	}

	now := h.now()
	uhid := strings.TrimSpace(req.UHID)
	phone := strings.TrimSpace(req.PhoneNo)

	isNew := true
	if uhid != "" {
		var known int
		if err := h.db.Get(&known, `SELECT COUNT(*) FROM Patients WHERE UHId = ?`, uhid); err != nil {
			log.Warn().Err(err).Str("uhid", uhid).Msg("could not check patient registry")
		} else {
			isNew = known == 0
		}
	}
	if isNew {
		if phone != "" {
			if uhid == "" {
				uhid = h.ids.NextUHID(req.PatientName)
			}
			insert := `INSERT INTO Patients (UHId, Date, PName, PhoneNo, Age, Gender) VALUES (?, ?, ?, ?, ?, ?)`
			if _, err := h.db.Exec(insert, uhid, now.Format("2006-01-02"),
				req.PatientName, phone, req.Age, nullIfEmpty(req.Gender)); err != nil {
				log.Warn().Err(err).Str("uhid", uhid).Msg("could not register walk-in patient")
			}
		} else if uhid == "" {
			// Walk-ins without a phone number get a throwaway id.
			uhid = "TEMP-" + now.Format("20060102150405")
		}
	}

	var total float64
	for _, item := range req.Medicines {
		total += float64(item.Quantity) * item.Price
	}
	// A negative discount is a surcharge and raises the final amount.
	final := total - req.Discount
	if final < 0 {
		final = 0
	}

	mode, cash, upi := splitPayment(req.PaymentMode, final, req.CashAmount, req.UPIAmount)

	invoiceID := h.ids.NextInvoiceID()
	invoiceDate := now.Format("2006-01-02 15:04")

	cols, err := schema.Columns(h.db, "MedicineInvoices")
	if err != nil {
		respondAppErr(w, err)
		return
	}
	record, err := schema.Resolve(cols, invoiceFields, map[string]any{
		"InvoiceId":   invoiceID,
		"InvoiceDate": invoiceDate,
		"UHId":        uhid,
		"PName":       req.PatientName,
		"PaymentMode": mode,
		"PhoneNo":     nullIfEmpty(phone),
		"TotalAmount": final,
		"Discount":    req.Discount,
		"CashAmount":  cash,
		"UPIAmount":   upi,
		"Comments":    nullIfEmpty(req.Comments),
	})
	if err != nil {
		respondAppErr(w, err)
		return
	}
	query, args, err := schema.InsertSQL("MedicineInvoices", record)
	if err != nil {
		respondAppErr(w, err)
		return
	}
	if _, err := h.db.Exec(query, args...); err != nil {
		respondAppErr(w, dbErr(err, "failed to save invoice", query, args...))
		return
	}

	saleCols, err := schema.Columns(h.db, "Pharmacy")
	if err != nil {
		respondAppErr(w, err)
		return
	}

	running := 0.0
	saved := 0
	for i, item := range req.Medicines {
		name := strings.TrimSpace(item.Medicine)
		if name == "" || item.Quantity <= 0 {
			log.Warn().Int("item", i+1).Msg("skipping invoice item with missing medicine or quantity")
			continue
		}

		var mid sql.NullString
		if err := h.db.Get(&mid, `
            SELECT MId FROM MedicineList
            WHERE TRIM(MName) = TRIM(?) COLLATE NOCASE
            LIMIT 1`, name); err != nil {
			log.Warn().Err(err).Str("medicine", name).Msg("could not look up medicine id")
		}

		itemTotal := float64(item.Quantity) * item.Price
		running += itemTotal

		var midVal *string
		if mid.Valid {
			midVal = &mid.String
		}
		saleRecord, err := schema.Resolve(saleCols, saleFields, map[string]any{
			"SaleId":    idgen.SaleID(invoiceID, i+1),
			"InvoiceId": invoiceID,
			"MId":       midVal,
			"Mstock":    item.Quantity,
			"MTotal":    itemTotal,
			"BTotal":    running,
			"PName":     req.PatientName,
		})
		if err != nil {
			log.Error().Err(err).Int("item", i+1).Msg("failed to resolve sale columns")
			continue
		}
		saleQuery, saleArgs, err := schema.InsertSQL("Pharmacy", saleRecord)
		if err != nil {
			log.Error().Err(err).Int("item", i+1).Msg("failed to build sale insert")
			continue
		}
		if _, err := h.db.Exec(saleQuery, saleArgs...); err != nil {
			log.Error().Err(err).Int("item", i+1).Str("medicine", name).Msg("failed to insert sale item")
			continue
		}
		saved++

		if _, err := h.db.Exec(`
            UPDATE MedicineList
            SET CurrentStock = CurrentStock - ?
            WHERE TRIM(MName) = TRIM(?) COLLATE NOCASE`, item.Quantity, name); err != nil {
			log.Warn().Err(err).Str("medicine", name).Msg("could not decrement stock")
		}
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("Invoice %s created with %d items", invoiceID, saved),
		"invoice_id":   invoiceID,
		"uhid":         uhid,
		"total_amount": total,
		"final_amount": final,
	})
}

func (h *Handler) lastInvoice(w http.ResponseWriter, r *http.Request) {
	headQuery := `
        SELECT InvoiceId, InvoiceDate, UHId, PName, PhoneNo, TotalAmount,
               Discount, PaymentMode, CashAmount, UPIAmount, Comments
        FROM MedicineInvoices
        ORDER BY InvoiceDate DESC, InvoiceId DESC
        LIMIT 1`
	var invoice domain.MedicineInvoice
	err := h.db.Get(&invoice, headQuery)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "no invoices found")
		return
	}
	if err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch last invoice", headQuery))
		return
	}

	itemQuery := `
        SELECT ph.SaleId, ph.InvoiceId, ph.MId, ph.Mstock, ph.MTotal, ph.BTotal,
               ml.MName
        FROM Pharmacy ph
        LEFT JOIN MedicineList ml ON TRIM(ml.MId) = TRIM(ph.MId)
        WHERE ph.InvoiceId = ?
        ORDER BY ph.SaleId`
	type itemRow struct {
		SaleID       string  `db:"SaleId" json:"SaleId"`
		InvoiceID    string  `db:"InvoiceId" json:"InvoiceId"`
		MedicineID   *string `db:"MId" json:"MId"`
		Quantity     int64   `db:"Mstock" json:"Quantity"`
		ItemTotal    float64 `db:"MTotal" json:"ItemTotal"`
		RunningTotal float64 `db:"BTotal" json:"RunningTotal"`
		MedicineName *string `db:"MName" json:"MName"`
	}
	items := []itemRow{}
	if err := h.db.Select(&items, itemQuery, invoice.InvoiceID); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch invoice items", itemQuery, invoice.InvoiceID))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"invoice": invoice,
		"items":   items,
	})
}
