package seed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// LoadMedicines ingests a catalog CSV into MedicineList, skipping
// names already present. Expected columns: MId, MName, MCompany,
// MType, MRP, PTR, Weight, GST, HSN.
func LoadMedicines(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Warn().Err(err).Str("path", csvPath).Msg("unable to open medicine catalog")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Warn().Err(err).Msg("unable to read medicine catalog header")
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Warn().Err(err).Msg("unable to start catalog transaction")
		return
	}
	stmt, err := tx.Preparex(`
        INSERT INTO MedicineList (MId, MName, MCompany, MType, MRP, PTR, Weight, GST, HSN, CurrentStock)
        SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, 0
        WHERE NOT EXISTS (
            SELECT 1 FROM MedicineList WHERE TRIM(MName) = TRIM(?) COLLATE NOCASE
        )`)
	if err != nil {
		log.Warn().Err(err).Msg("unable to prepare catalog insert")
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Msg("unable to read medicine catalog row")
			continue
		}
		if len(record) < 9 {
			continue
		}

		name := strings.TrimSpace(record[1])
		if name == "" {
			continue
		}

		res, err := stmt.Exec(
			nullStr(record[0]), name, nullStr(record[2]), nullStr(record[3]),
			nullFloat(record[4]), nullFloat(record[5]),
			nullStr(record[6]), nullFloat(record[7]), nullStr(record[8]),
			name)
		if err != nil {
			log.Warn().Err(err).Str("medicine", name).Msg("unable to insert catalog row")
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("unable to commit medicine catalog")
		return
	}
	log.Info().Int("rows", rows).Msg("seeded medicine catalog")
}

func nullStr(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nullFloat(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	val, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &val
}
