package api

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"medbill/m/domain"
	"medbill/m/internal/idgen"
)

func (h *Handler) listAgencies(w http.ResponseWriter, r *http.Request) {
	query := `SELECT DISTINCT AgencyName FROM mAgencies WHERE AgencyName IS NOT NULL ORDER BY AgencyName`
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

func (h *Handler) listMedicineNames(w http.ResponseWriter, r *http.Request) {
	query := `SELECT DISTINCT MName FROM MedicineList WHERE MName IS NOT NULL ORDER BY MName`
	names := []string{}
	if err := h.db.Select(&names, query); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch medicines", query))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    names,
		"count":   len(names),
	})
}

func (h *Handler) medicineDetails(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "medicine name is required")
		return
	}

	query := `
        SELECT MId, MName, MCompany, MType, MRP, PTR, Weight, GST, HSN, CurrentStock
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
		"success": true,
		"data":    med,
	})
}

// nextMIDQuery derives the next catalog id for a type prefix, e.g. TAB014.
const nextMIDQuery = `
    SELECT COALESCE(MAX(CAST(SUBSTR(MId, LENGTH(?) + 1) AS INTEGER)), 0) + 1
    FROM MedicineList
    WHERE MId LIKE ? || '%'`

func (h *Handler) medicineTypes(w http.ResponseWriter, r *http.Request) {
	typeQuery := `SELECT DISTINCT MType FROM MedicineList WHERE MType IS NOT NULL ORDER BY MType`
	types := []string{}
	if err := h.db.Select(&types, typeQuery); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch medicine types", typeQuery))
		return
	}

	type typeEntry struct {
		Type   string `json:"type"`
		Prefix string `json:"prefix"`
		NextID string `json:"next_id"`
	}
	entries := make([]typeEntry, 0, len(types))
	for _, mtype := range types {
		prefix := typePrefix(mtype)
		nextID := 1
		if err := h.db.Get(&nextID, nextMIDQuery, prefix, prefix); err != nil {
			log.Warn().Err(err).Str("type", mtype).Msg("could not compute next medicine id")
			nextID = 1
		}
		entries = append(entries, typeEntry{
			Type:   mtype,
			Prefix: prefix,
			NextID: fmt.Sprintf("%s%03d", prefix, nextID),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"types":   entries,
	})
}

func typePrefix(mtype string) string {
	trimmed := strings.TrimSpace(mtype)
	if len(trimmed) > 3 {
		trimmed = trimmed[:3]
	}
	return strings.ToUpper(trimmed)
}

type addMedicineRequest struct {
	Name    string   `json:"medicine_name"`
	MRP     *float64 `json:"mrp"`
	PTR     *float64 `json:"ptr"`
	Company string   `json:"company"`
	Type    string   `json:"medicine_type"`
}

func (h *Handler) addMedicine(w http.ResponseWriter, r *http.Request) {
	var req addMedicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.MRP == nil {
		respondError(w, http.StatusBadRequest, "medicine name and MRP are required")
		return
	}

	checkQuery := `SELECT COUNT(*) FROM MedicineList WHERE TRIM(MName) = TRIM(?) COLLATE NOCASE`
	var exists int
	if err := h.db.Get(&exists, checkQuery, req.Name); err != nil {
		respondAppErr(w, dbErr(err, "failed to add medicine", checkQuery, req.Name))
		return
	}
	if exists > 0 {
		respondError(w, http.StatusConflict, fmt.Sprintf("medicine %q already exists", req.Name))
		return
	}

	var mid *string
	if prefix := typePrefix(req.Type); prefix != "" {
		next := 1
		if err := h.db.Get(&next, nextMIDQuery, prefix, prefix); err != nil {
			log.Warn().Err(err).Str("type", req.Type).Msg("could not compute medicine id, leaving MId empty")
		} else {
			generated := fmt.Sprintf("%s%03d", prefix, next)
			mid = &generated
		}
	}

	insert := `
        INSERT INTO MedicineList (MId, MName, MRP, PTR, MCompany, MType, CurrentStock)
        VALUES (?, ?, ?, ?, ?, ?, 0)`
	if _, err := h.db.Exec(insert, mid, req.Name, req.MRP, req.PTR,
		nullIfEmpty(req.Company), nullIfEmpty(req.Type)); err != nil {
		respondAppErr(w, dbErr(err, "failed to add medicine", insert, req.Name))
		return
	}

	resp := map[string]any{
		"success": true,
		"message": fmt.Sprintf("Medicine %q added successfully", req.Name),
	}
	if mid != nil {
		resp["medicine_id"] = *mid
	}
	respondJSON(w, http.StatusCreated, resp)
}

type updatePriceRequest struct {
	Name   string   `json:"medicine_name"`
	NewMRP *float64 `json:"new_mrp"`
	NewPTR *float64 `json:"new_ptr"`
}

func (h *Handler) updateMedicinePrice(w http.ResponseWriter, r *http.Request) {
	var req updatePriceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.NewMRP == nil {
		respondError(w, http.StatusBadRequest, "medicine name and new MRP are required")
		return
	}

	update := `
        UPDATE MedicineList
        SET MRP = ?, PTR = ?
        WHERE TRIM(MName) = TRIM(?) COLLATE NOCASE`
	if _, err := h.db.Exec(update, req.NewMRP, req.NewPTR, req.Name); err != nil {
		respondAppErr(w, dbErr(err, "failed to update price", update, req.Name))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Price updated successfully for %q", req.Name),
	})
}

type billItemRequest struct {
	Name       string  `json:"item_name"`
	Quantity   int64   `json:"quantity"`
	BatchNo    string  `json:"batch_no"`
	ExpiryDate string  `json:"expiry_date"`
	Price      float64 `json:"price"`
	Difference float64 `json:"difference"`
}

type deliveryBillRequest struct {
	BillDate       string            `json:"BillDate"`
	BillNo         string            `json:"BillNo"`
	DeliveryDate   string            `json:"DeliveryDate"`
	Agency         string            `json:"Agency"`
	BillAmount     float64           `json:"BillAmount"`
	TaxAmount      float64           `json:"TaxAmount"`
	DiscountInBill string            `json:"DiscountInBill"`
	DiscountAmount float64           `json:"Disc_amount"`
	BillTotal      float64           `json:"BillTotal"`
	Items          []billItemRequest `json:"items"`
}

// saveDeliveryBill records a supplier delivery: the bill header, its
// line items and the stock increments. Line items are isolated; one
// failing insert does not abort the rest.
func (h *Handler) saveDeliveryBill(w http.ResponseWriter, r *http.Request) {
	var req deliveryBillRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}

	for field, value := range map[string]string{
		"BillDate":     req.BillDate,
		"BillNo":       req.BillNo,
		"DeliveryDate": req.DeliveryDate,
		"Agency":       req.Agency,
	} {
		if strings.TrimSpace(value) == "" {
			respondError(w, http.StatusBadRequest, field+" is required")
			return
		}
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "at least one item is required")
		return
	}

	billDate, err := time.Parse("2006-01-02", req.BillDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid BillDate, expected YYYY-MM-DD")
		return
	}
	billID := idgen.BillID(req.BillNo, billDate)

	discountInBill := 0
	discountPct := 0.0
	if req.DiscountInBill == "Yes" {
		discountInBill = 1
		if req.BillAmount > 0 {
			discountPct = math.Round(req.DiscountAmount/req.BillAmount*100*100) / 100
		}
	}

	// Collision pre-check; the primary key backs this up.
	checkQuery := `SELECT COUNT(*) FROM DeliveryBills WHERE BillId = ?`
	var exists int
	if err := h.db.Get(&exists, checkQuery, billID); err != nil {
		respondAppErr(w, dbErr(err, "failed to save bill", checkQuery, billID))
		return
	}
	if exists > 0 {
		respondError(w, http.StatusConflict, fmt.Sprintf("bill %s already exists", billID))
		return
	}

	insertBill := `
        INSERT INTO DeliveryBills
        (BillId, BillNo, BillDate, DeliveryDate, MAgency, BillAmount, TaxAmount, BillTotal,
         DiscountInBill, DiscountAmount, DiscountPercent, BillPaymentStatus)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'unpaid')`
	if _, err := h.db.Exec(insertBill, billID, req.BillNo, req.BillDate, req.DeliveryDate,
		req.Agency, req.BillAmount, req.TaxAmount, req.BillTotal,
		discountInBill, req.DiscountAmount, discountPct); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			respondError(w, http.StatusConflict, fmt.Sprintf("bill %s already exists", billID))
			return
		}
		respondAppErr(w, dbErr(err, "failed to save bill", insertBill, billID))
		return
	}

	insertItem := `
        INSERT INTO StockDeliveries
        (BillId, MName, Quantity, BatchNo, ExpiryDate, DeliveryDate, Price, Difference)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	updateStock := `
        UPDATE MedicineList
        SET CurrentStock = CurrentStock + ?,
            LastDeliveryDate = ?
        WHERE TRIM(MName) = TRIM(?) COLLATE NOCASE`

	saved, failed := 0, 0
	for i, item := range req.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" || item.Quantity <= 0 {
			log.Warn().Int("item", i+1).Msg("skipping delivery item with missing name or quantity")
			failed++
			continue
		}

		if _, err := h.db.Exec(insertItem, billID, name, item.Quantity,
			nullIfEmpty(item.BatchNo), nullIfEmpty(item.ExpiryDate),
			req.DeliveryDate, item.Price, item.Difference); err != nil {
			failed++
			log.Error().Err(err).Int("item", i+1).Str("medicine", name).Msg("failed to insert delivery item")
			continue
		}
		saved++

		if _, err := h.db.Exec(updateStock, item.Quantity, req.DeliveryDate, name); err != nil {
			log.Warn().Err(err).Str("medicine", name).Msg("could not update stock")
		}
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"message":      "Bill saved successfully",
		"bill_id":      billID,
		"items_saved":  saved,
		"items_failed": failed,
	})
}
