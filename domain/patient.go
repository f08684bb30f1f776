package domain

// Patient is a registered patient row. UHId encodes the registration
// year-month, the name initial and a monthly per-letter sequence.
type Patient struct {
	UHID    string  `db:"UHId" json:"UHId"`
	Date    string  `db:"Date" json:"Date"`
	Name    string  `db:"PName" json:"PName"`
	PhoneNo *string `db:"PhoneNo" json:"PhoneNo,omitempty"`
	Age     *int64  `db:"Age" json:"Age,omitempty"`
	Gender  *string `db:"Gender" json:"Gender,omitempty"`
}

// VisitEntry is one outpatient or procedure visit joined with the patient,
// as exposed by vw_getOPdetails.
type VisitEntry struct {
	UHID          string  `db:"UHId" json:"UHId"`
	Name          string  `db:"PName" json:"PName"`
	PhoneNo       *string `db:"PhoneNo" json:"PhoneNo"`
	Age           *int64  `db:"Age" json:"Age"`
	Gender        *string `db:"Gender" json:"Gender"`
	VisitType     string  `db:"OPProc" json:"VisitType"`
	Date          string  `db:"Date" json:"Date"`
	PaymentMode   *string `db:"PaymentMode" json:"PaymentMode"`
	AmountPaid    *int64  `db:"AmountPaid" json:"AmountPaid"`
	ProcedureName *string `db:"ProcName" json:"ProcedureName"`
}
