package domain

// Medicine is a catalog row. MRP is the retail price, PTR the
// price-to-retailer.
type Medicine struct {
	MID          *string  `db:"MId" json:"MId"`
	Name         string   `db:"MName" json:"MName"`
	Company      *string  `db:"MCompany" json:"MCompany"`
	Type         *string  `db:"MType" json:"MType"`
	MRP          *float64 `db:"MRP" json:"MRP"`
	PTR          *float64 `db:"PTR" json:"PTR"`
	Weight       *string  `db:"Weight" json:"Weight,omitempty"`
	GST          *float64 `db:"GST" json:"GST,omitempty"`
	HSN          *string  `db:"HSN" json:"HSN,omitempty"`
	CurrentStock int64    `db:"CurrentStock" json:"CurrentStock"`
}
