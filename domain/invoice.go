package domain

// MedicineInvoice is one pharmacy sale. InvoiceId is PM+YY+DDD+SS.
type MedicineInvoice struct {
	InvoiceID   string  `db:"InvoiceId" json:"InvoiceId"`
	InvoiceDate string  `db:"InvoiceDate" json:"InvoiceDate"`
	UHID        *string `db:"UHId" json:"UHId"`
	PatientName *string `db:"PName" json:"PName"`
	PhoneNo     *string `db:"PhoneNo" json:"PhoneNo"`
	TotalAmount float64 `db:"TotalAmount" json:"TotalAmount"`
	Discount    float64 `db:"Discount" json:"Discount"`
	PaymentMode *string `db:"PaymentMode" json:"PaymentMode"`
	CashAmount  float64 `db:"CashAmount" json:"CashAmount"`
	UPIAmount   float64 `db:"UPIAmount" json:"UPIAmount"`
	Comments    *string `db:"Comments" json:"Comments,omitempty"`
}

// SaleItem is one invoice line item. SaleId is the InvoiceId plus a
// two-digit item index; BTotal is the running total in insertion order.
type SaleItem struct {
	SaleID       string  `db:"SaleId" json:"SaleId"`
	InvoiceID    string  `db:"InvoiceId" json:"InvoiceId"`
	MedicineID   *string `db:"MId" json:"MId"`
	Quantity     int64   `db:"Mstock" json:"Quantity"`
	ItemTotal    float64 `db:"MTotal" json:"ItemTotal"`
	RunningTotal float64 `db:"BTotal" json:"RunningTotal"`
	PatientName  *string `db:"PName" json:"PName"`
}
