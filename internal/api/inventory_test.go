package api

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tablets", "TAB"},
		{"Syrup", "SYR"},
		{" gel ", "GEL"},
		{"IV", "IV"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, typePrefix(tt.in))
	}
}

func TestAddMedicine(t *testing.T) {
	t.Run("missing name or mrp", func(t *testing.T) {
		h, _ := newTestHandler(t)
		rec := httptest.NewRecorder()
		h.addMedicine(rec, postJSON("/inventory/api/medicine/new", `{"medicine_name": "Paracetamol"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		h, mock := newTestHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM MedicineList")).
			WithArgs("Paracetamol").
			WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))

		rec := httptest.NewRecorder()
		h.addMedicine(rec, postJSON("/inventory/api/medicine/new",
			`{"medicine_name": "Paracetamol", "mrp": 25.5}`))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("new medicine gets a typed id", func(t *testing.T) {
		h, mock := newTestHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM MedicineList")).
			WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("FROM MedicineList")).
			WithArgs("TAB", "TAB").
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(14))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO MedicineList")).
			WillReturnResult(sqlmock.NewResult(1, 1))

		rec := httptest.NewRecorder()
		h.addMedicine(rec, postJSON("/inventory/api/medicine/new",
			`{"medicine_name": "Dolo 650", "mrp": 30, "medicine_type": "Tablets"}`))

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "TAB014", body["medicine_id"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveDeliveryBillValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing bill no", `{"BillDate": "2025-08-21", "DeliveryDate": "2025-08-21", "Agency": "MedPlus", "items": [{"item_name": "Dolo", "quantity": 5}]}`},
		{"no items", `{"BillDate": "2025-08-21", "BillNo": "112", "DeliveryDate": "2025-08-21", "Agency": "MedPlus", "items": []}`},
		{"bad bill date", `{"BillDate": "21-08-2025", "BillNo": "112", "DeliveryDate": "2025-08-21", "Agency": "MedPlus", "items": [{"item_name": "Dolo", "quantity": 5}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			rec := httptest.NewRecorder()
			h.saveDeliveryBill(rec, postJSON("/inventory/api/bill", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSaveDeliveryBillConflict(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM DeliveryBills WHERE BillId = ?")).
		WithArgs("112-250821").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))

	body := `{
        "BillDate": "2025-08-21", "BillNo": "112", "DeliveryDate": "2025-08-21",
        "Agency": "MedPlus", "items": [{"item_name": "Dolo 650", "quantity": 5}]
    }`
	rec := httptest.NewRecorder()
	h.saveDeliveryBill(rec, postJSON("/inventory/api/bill", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDeliveryBill(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM DeliveryBills WHERE BillId = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))
	// 100 off 300 is 33.333...%, stored rounded to two decimals.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO DeliveryBills")).
		WithArgs("112-250821", "112", "2025-08-21", "2025-08-21", "MedPlus",
			300.0, 0.0, 0.0, 1, 100.0, 33.33).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO StockDeliveries")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE MedicineList")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{
        "BillDate": "2025-08-21", "BillNo": "112", "DeliveryDate": "2025-08-21",
        "Agency": "MedPlus", "BillAmount": 300, "DiscountInBill": "Yes", "Disc_amount": 100,
        "items": [
            {"item_name": "Dolo 650", "quantity": 5, "batch_no": "B42", "price": 200},
            {"item_name": "", "quantity": 5}
        ]
    }`
	rec := httptest.NewRecorder()
	h.saveDeliveryBill(rec, postJSON("/inventory/api/bill", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "112-250821", resp["bill_id"])
	assert.Equal(t, float64(1), resp["items_saved"])
	assert.Equal(t, float64(1), resp["items_failed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
