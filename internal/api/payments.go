package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"medbill/m/domain"
	"medbill/m/internal/billing"
)

const billColumns = `BillId, BillNo, BillDate, DeliveryDate, MAgency, BillAmount, TaxAmount,
       BillTotal, DiscountInBill, DiscountAmount, DiscountPercent, BillPaymentStatus,
       BillPaymentDate, PaymentMode, AmountPaid, TransactionDetails`

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.ToLower(strings.TrimSpace(q.Get("payment_status")))
	if status == "" {
		status = "unpaid"
	}

	var (
		clauses []string
		args    []any
	)
	if status != "all" {
		clauses = append(clauses, `(lower(BillPaymentStatus) = ? OR BillPaymentStatus IS NULL)`)
		args = append(args, status)
	}
	if from := strings.TrimSpace(q.Get("date_from")); from != "" {
		clauses = append(clauses, `BillDate >= ?`)
		args = append(args, from)
	}
	if to := strings.TrimSpace(q.Get("date_to")); to != "" {
		clauses = append(clauses, `BillDate <= ?`)
		args = append(args, to)
	}
	if agency := strings.TrimSpace(q.Get("agency")); agency != "" {
		clauses = append(clauses, `TRIM(MAgency) = TRIM(?) COLLATE NOCASE`)
		args = append(args, agency)
	}

	query := `SELECT ` + billColumns + ` FROM DeliveryBills`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY BillDate DESC, BillId DESC`

	bills := []domain.DeliveryBill{}
	if err := h.db.Select(&bills, query, args...); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch bills", query, args...))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    bills,
		"count":   len(bills),
	})
}

func (h *Handler) billAgencies(w http.ResponseWriter, r *http.Request) {
	query := `SELECT DISTINCT MAgency FROM DeliveryBills WHERE MAgency IS NOT NULL ORDER BY MAgency`
	agencies := []string{}
	if err := h.db.Select(&agencies, query); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch agencies", query))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    agencies,
		"count":   len(agencies),
	})
}

type billDataEntry struct {
	BillID         string  `json:"billId"`
	BillTotal      float64 `json:"billTotal"`
	DiscountAmount float64 `json:"discountAmount"`
}

type bulkPaymentRequest struct {
	BillIDs            []string        `json:"bill_ids"`
	BillsData          []billDataEntry `json:"bills_data"`
	PaymentDate        string          `json:"payment_date"`
	PaymentMode        string          `json:"payment_mode"`
	AmountPaid         float64         `json:"amount_paid"`
	TransactionDetails string          `json:"transaction_details"`
	SelectedTotal      float64         `json:"selected_total"`
	OriginalTotal      float64         `json:"original_total"`
	DiscountAmount     float64         `json:"discount_amount"`
	DiscountPercent    float64         `json:"discount_percentage"`
}

// bulkPaymentUpdate settles several delivery bills with one payment,
// spreading the discount and the paid amount across them. Bills are
// updated independently; one failure does not roll back the rest.
func (h *Handler) bulkPaymentUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	if len(req.BillIDs) == 0 {
		respondError(w, http.StatusBadRequest, "at least one bill id is required")
		return
	}
	req.PaymentDate = strings.TrimSpace(req.PaymentDate)
	if req.PaymentDate == "" {
		respondError(w, http.StatusBadRequest, "payment date is required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.PaymentDate); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payment date, expected YYYY-MM-DD")
		return
	}
	if strings.TrimSpace(req.PaymentMode) == "" {
		respondError(w, http.StatusBadRequest, "payment mode is required")
		return
	}

	info := make(map[string]billing.BillInfo, len(req.BillsData))
	for _, entry := range req.BillsData {
		info[entry.BillID] = billing.BillInfo{
			Total:            entry.BillTotal,
			ExistingDiscount: entry.DiscountAmount,
		}
	}
	allocs := billing.Allocate(req.BillIDs, info, req.DiscountPercent, req.AmountPaid, req.SelectedTotal)

	update := `
        UPDATE DeliveryBills
        SET BillPaymentStatus = 'Paid',
            BillPaymentDate = ?,
            PaymentMode = ?,
            AmountPaid = ?,
            TransactionDetails = ?
        WHERE BillId = ?`

	details := strings.TrimSpace(req.TransactionDetails)
	updated := 0
	processed := make([]map[string]any, 0, len(allocs))
	for _, alloc := range allocs {
		if _, err := h.db.Exec(update, req.PaymentDate, req.PaymentMode,
			alloc.Paid, details+alloc.DetailSuffix(), alloc.BillID); err != nil {
			log.Error().Err(err).Str("bill_id", alloc.BillID).Msg("failed to update bill payment")
			continue
		}
		updated++
		processed = append(processed, map[string]any{
			"bill_id":         alloc.BillID,
			"original_amount": alloc.Original,
			"discount_amount": alloc.Discount,
			"final_amount":    alloc.Final,
			"amount_paid":     alloc.Paid,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":                true,
		"message":                fmt.Sprintf("Payment processed for %d bills", updated),
		"updated_count":          updated,
		"payment_status":         "Paid",
		"total_discount_applied": req.DiscountAmount,
		"original_total":         req.OriginalTotal,
		"final_total":            billing.TotalFinal(allocs),
		"processed_bills":        processed,
	})
}

type paymentStatusRequest struct {
	BillID        string `json:"bill_id"`
	PaymentStatus string `json:"payment_status"`
}

func (h *Handler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req paymentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	req.BillID = strings.TrimSpace(req.BillID)
	req.PaymentStatus = strings.TrimSpace(req.PaymentStatus)
	if req.BillID == "" || req.PaymentStatus == "" {
		respondError(w, http.StatusBadRequest, "bill id and payment status are required")
		return
	}

	var paymentDate *string
	if strings.EqualFold(req.PaymentStatus, "paid") {
		today := h.now().Format("2006-01-02")
		paymentDate = &today
	}

	update := `UPDATE DeliveryBills SET BillPaymentStatus = ?, BillPaymentDate = ? WHERE BillId = ?`
	res, err := h.db.Exec(update, req.PaymentStatus, paymentDate, req.BillID)
	if err != nil {
		respondAppErr(w, dbErr(err, "failed to update payment status", update, req.BillID))
		return
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("bill %s not found", req.BillID))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Bill %s marked as %s", req.BillID, req.PaymentStatus),
	})
}

type markPaidRequest struct {
	PaymentMode        string  `json:"payment_mode"`
	AmountPaid         float64 `json:"amount_paid"`
	TransactionDetails string  `json:"transaction_details"`
}

func (h *Handler) markBillPaid(w http.ResponseWriter, r *http.Request) {
	billID := strings.TrimSpace(chi.URLParam(r, "billId"))
	if billID == "" {
		respondError(w, http.StatusBadRequest, "bill id is required")
		return
	}

	var req markPaidRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}

	update := `
        UPDATE DeliveryBills
        SET BillPaymentStatus = 'paid',
            BillPaymentDate = ?,
            PaymentMode = ?,
            AmountPaid = ?,
            TransactionDetails = ?
        WHERE BillId = ?`
	res, err := h.db.Exec(update, h.now().Format("2006-01-02"),
		nullIfEmpty(req.PaymentMode), req.AmountPaid,
		nullIfEmpty(req.TransactionDetails), billID)
	if err != nil {
		respondAppErr(w, dbErr(err, "failed to mark bill paid", update, billID))
		return
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("bill %s not found", billID))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Bill %s marked as paid", billID),
	})
}
