package api

import (
	"net/http"
	"strings"

	"medbill/m/domain"
)

const visitColumns = `UHId, PName, PhoneNo, Age, Gender, OPProc, Date, PaymentMode, AmountPaid, ProcName`

func (h *Handler) todayEntries(w http.ResponseWriter, r *http.Request) {
	today := h.now().Format("2006-01-02")
	query := `SELECT ` + visitColumns + ` FROM vw_getOPdetails WHERE substr(Date, 1, 10) = ? ORDER BY Date DESC`

	entries := []domain.VisitEntry{}
	if err := h.db.Select(&entries, query, today); err != nil {
		respondAppErr(w, dbErr(err, "failed to fetch today's entries", query, today))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

type registerPatientRequest struct {
	Name          string `json:"PName"`
	UHID          string `json:"UHId"`
	Date          string `json:"Date"`
	PhoneNo       string `json:"PhoneNo"`
	Age           *int64 `json:"Age"`
	Gender        string `json:"Gender"`
	VisitType     string `json:"OPProc"`
	PaymentMode   string `json:"PaymentMode"`
	AmountPaid    int64  `json:"AmountPaid"`
	ProcedureName string `json:"ProcedureName"`
}

func (h *Handler) registerPatient(w http.ResponseWriter, r *http.Request) {
	var req registerPatientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "patient name is required")
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" {
		respondError(w, http.StatusBadRequest, "date is required")
		return
	}
	req.PhoneNo = strings.TrimSpace(req.PhoneNo)
	if req.PhoneNo == "" {
		respondError(w, http.StatusBadRequest, "phone number is required")
		return
	}
	if req.Age == nil {
		respondError(w, http.StatusBadRequest, "age is required")
		return
	}
	req.Gender = strings.TrimSpace(req.Gender)
	if req.Gender == "" {
		respondError(w, http.StatusBadRequest, "gender is required")
		return
	}

	visitType := strings.ToLower(strings.TrimSpace(req.VisitType))
	procName := strings.TrimSpace(req.ProcedureName)
	if visitType != "op" && visitType != "procedure" {
		respondError(w, http.StatusBadRequest, "invalid OPProc value, must be 'op' or 'procedure'")
		return
	}
	if visitType == "procedure" && procName == "" {
		respondError(w, http.StatusBadRequest, "procedure name is required for procedure type")
		return
	}

	uhid := strings.TrimSpace(req.UHID)
	if uhid == "" {
		uhid = h.ids.NextUHID(req.Name)
	}

	upsert := `
        INSERT INTO Patients (UHId, Date, PName, PhoneNo, Age, Gender)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(UHId) DO UPDATE SET
          Date=excluded.Date,
          PName=excluded.PName,
          PhoneNo=excluded.PhoneNo,
          Age=excluded.Age,
          Gender=excluded.Gender`
	if _, err := h.db.Exec(upsert, uhid, req.Date, req.Name, req.PhoneNo, *req.Age, req.Gender); err != nil {
		respondAppErr(w, dbErr(err, "registration failed", upsert, uhid, req.Name))
		return
	}

	payMode := strings.TrimSpace(req.PaymentMode)
	switch visitType {
	case "op":
		insert := `INSERT INTO Outpatient (OPDate, UHId, PaymentMode, AmountPaid) VALUES (?, ?, ?, ?)`
		if _, err := h.db.Exec(insert, req.Date, uhid, payMode, req.AmountPaid); err != nil {
			respondAppErr(w, dbErr(err, "registration failed", insert, uhid))
			return
		}
	case "procedure":
		insert := `INSERT INTO Procedures (ProcDate, UHId, ProcedureName, PaymentMode, AmountPaid) VALUES (?, ?, ?, ?, ?)`
		if _, err := h.db.Exec(insert, req.Date, uhid, procName, payMode, req.AmountPaid); err != nil {
			respondAppErr(w, dbErr(err, "registration failed", insert, uhid))
			return
		}
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Patient registered successfully",
		"uhid":    uhid,
	})
}

func (h *Handler) searchPatients(w http.ResponseWriter, r *http.Request) {
	field := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("field")))
	term := strings.TrimSpace(r.URL.Query().Get("term"))
	if field == "" || term == "" {
		respondError(w, http.StatusBadRequest, "both 'field' and 'term' parameters are required")
		return
	}

	var (
		where string
		arg   string
	)
	switch field {
	case "name":
		where = `WHERE PName LIKE ?`
		arg = "%" + strings.ToUpper(term) + "%"
	case "phoneno":
		where = `WHERE PhoneNo LIKE ?`
		arg = "%" + term + "%"
	case "uhid":
		where = `WHERE UHId = ?`
		arg = strings.ToUpper(term)
	case "date":
		where = `WHERE substr(Date, 1, 10) = ?`
		arg = term
	default:
		respondError(w, http.StatusBadRequest, "field must be one of name, phoneno, uhid, date")
		return
	}

	query := `SELECT ` + visitColumns + ` FROM vw_getOPdetails ` + where
	entries := []domain.VisitEntry{}
	if err := h.db.Select(&entries, query, arg); err != nil {
		respondAppErr(w, dbErr(err, "search failed", query, arg))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"data":         entries,
		"count":        len(entries),
		"search_field": field,
		"search_term":  term,
	})
}

func (h *Handler) generateUHID(w http.ResponseWriter, r *http.Request) {
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
