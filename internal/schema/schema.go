// Package schema probes a table's live column names and resolves logical
// fields against the spellings that have accumulated in the store over
// the years (e.g. Cash_Amo vs CashAmount). Columns are re-read on every
// call so live schema changes are tolerated at the cost of one query per
// insert.
package schema

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"medbill/m/internal/apperr"
)

var dialect = goqu.Dialect("sqlite3")

// Columns returns the table's column names in declaration order,
// preserving their original casing.
func Columns(db *sqlx.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, apperr.DataAccessErr("could not read table columns", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, apperr.DataAccessErr("could not scan table column", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccessErr("could not read table columns", err)
	}
	return cols, nil
}

// Match returns the first column whose name equals any candidate after
// trimming whitespace and lowercasing, preserving the original spelling.
// It returns "" when nothing matches.
func Match(columns []string, candidates ...string) string {
	for _, cand := range candidates {
		want := strings.ToLower(strings.TrimSpace(cand))
		for _, col := range columns {
			if strings.ToLower(strings.TrimSpace(col)) == want {
				return col
			}
		}
	}
	return ""
}

// Field maps a logical field to its accepted physical spellings, in
// preference order.
type Field struct {
	Name     string
	Aliases  []string
	Required bool
}

// Resolve picks a physical column for each field and pairs it with the
// value under the field's logical name. Unresolved optional fields are
// skipped; unresolved required fields abort with an error naming them.
// Fields whose logical name is absent from values are skipped as well.
func Resolve(columns []string, fields []Field, values map[string]any) (goqu.Record, error) {
	record := goqu.Record{}
	var missing []string
	for _, f := range fields {
		col := Match(columns, f.Aliases...)
		if col == "" {
			if f.Required {
				missing = append(missing, f.Name)
			}
			continue
		}
		val, ok := values[f.Name]
		if !ok {
			continue
		}
		record[col] = val
	}
	if len(missing) > 0 {
		return nil, apperr.DataAccessErr(
			fmt.Sprintf("table missing required columns: %s", strings.Join(missing, ", ")), nil)
	}
	return record, nil
}

// InsertSQL builds a parameterized INSERT for the resolved record.
// goqu quotes the identifiers, so historical names with stray spaces
// survive intact.
func InsertSQL(table string, record goqu.Record) (string, []any, error) {
	query, args, err := dialect.Insert(table).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return "", nil, apperr.DataAccessErr("could not build insert statement", err)
	}
	return query, args, nil
}
