// Package idgen produces the structured identifiers that appear on
// printed documents: patient UHIds, pharmacy invoice ids, delivery bill
// ids and sale line ids. The formats are an external contract.
//
// The generators are not safe under concurrent callers racing for the
// same counter; a collision surfaces as a uniqueness failure on insert.
package idgen

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// StartingLetter returns the first alphabetic rune of name upper-cased,
// defaulting to "A".
func StartingLetter(name string) string {
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "A"
}

// FormatUHID builds YYMM + initial + zero-padded sequence, where lastSeq
// is the current monthly count for the initial.
func FormatUHID(now time.Time, name string, lastSeq int) string {
	return fmt.Sprintf("%s%s%03d", now.Format("0601"), StartingLetter(name), lastSeq+1)
}

// FormatInvoiceID builds PM + YY + day-of-year + daily sequence, where
// todayCount is the number of invoices already dated today.
func FormatInvoiceID(now time.Time, todayCount int) string {
	return fmt.Sprintf("PM%s%03d%02d", now.Format("06"), now.YearDay(), todayCount+1)
}

// BillID joins the caller-supplied bill number with the bill date as
// YYMMDD. Callers must supply a BillNo unique per day.
func BillID(billNo string, billDate time.Time) string {
	return billNo + "-" + billDate.Format("060102")
}

// SaleID appends the 1-based two-digit item index to the invoice id.
func SaleID(invoiceID string, index int) string {
	return fmt.Sprintf("%s%02d", invoiceID, index)
}

// Generator reads the per-key counters behind the identifier schemes.
type Generator struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) *Generator {
	return NewWithClock(db, time.Now)
}

// NewWithClock constructs a Generator reading the current time from now.
func NewWithClock(db *sqlx.DB, now func() time.Time) *Generator {
	return &Generator{db: db, now: now}
}

// NextUHID returns the next UHId for the given patient name. It never
// fails: if the monthly counter cannot be read the sequence restarts at
// 1, and any other trouble falls back to YYMM + A001.
func (g *Generator) NextUHID(name string) string {
	now := g.now()
	letter := StartingLetter(name)

	var count int
	err := g.db.Get(&count, `
        SELECT name_cou
        FROM vw_Name_counter
        WHERE TRIM(starting) = TRIM(?) COLLATE NOCASE
        LIMIT 1`, letter)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		count = 0
	case err != nil:
		log.Warn().Err(err).Str("letter", letter).Msg("could not read UHId counter")
		count = 0
	}

	return FormatUHID(now, name, count)
}

// NextInvoiceID returns the next invoice id for today. On a failed count
// the daily sequence defaults to 01.
func (g *Generator) NextInvoiceID() string {
	now := g.now()

	var count int
	err := g.db.Get(&count, `
        SELECT COUNT(*)
        FROM MedicineInvoices
        WHERE substr(TRIM(InvoiceDate), 1, 10) = ?`, now.Format("2006-01-02"))
	if err != nil {
		log.Warn().Err(err).Msg("could not count today's invoices, defaulting sequence to 01")
		count = 0
	}

	return FormatInvoiceID(now, count)
}
