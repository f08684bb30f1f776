package domain

// DeliveryBill is one supplier delivery bill. BillId is BillNo-YYMMDD.
type DeliveryBill struct {
	BillID             string  `db:"BillId" json:"BillId"`
	BillNo             string  `db:"BillNo" json:"BillNo"`
	BillDate           string  `db:"BillDate" json:"BillDate"`
	DeliveryDate       *string `db:"DeliveryDate" json:"DeliveryDate,omitempty"`
	Agency             *string `db:"MAgency" json:"MAgency"`
	BillAmount         float64 `db:"BillAmount" json:"BillAmount"`
	TaxAmount          float64 `db:"TaxAmount" json:"TaxAmount"`
	BillTotal          float64 `db:"BillTotal" json:"BillTotal"`
	DiscountInBill     int64   `db:"DiscountInBill" json:"DiscountInBill"`
	DiscountAmount     float64 `db:"DiscountAmount" json:"DiscountAmount"`
	DiscountPercent    float64 `db:"DiscountPercent" json:"DiscountPercent"`
	PaymentStatus      *string `db:"BillPaymentStatus" json:"BillPaymentStatus"`
	PaymentDate        *string `db:"BillPaymentDate" json:"PaymentDate"`
	PaymentMode        *string `db:"PaymentMode" json:"PaymentMode"`
	AmountPaid         float64 `db:"AmountPaid" json:"AmountPaid"`
	TransactionDetails *string `db:"TransactionDetails" json:"TransactionDetails"`
}

// StockDelivery is one line item of a delivery bill.
type StockDelivery struct {
	ID           int64   `db:"id" json:"id"`
	BillID       string  `db:"BillId" json:"BillId"`
	MedicineName string  `db:"MName" json:"MName"`
	Quantity     int64   `db:"Quantity" json:"Quantity"`
	BatchNo      *string `db:"BatchNo" json:"BatchNo"`
	ExpiryDate   *string `db:"ExpiryDate" json:"ExpiryDate"`
	DeliveryDate *string `db:"DeliveryDate" json:"DeliveryDate"`
	Price        float64 `db:"Price" json:"Price"`
	Difference   float64 `db:"Difference" json:"Difference"`
}
