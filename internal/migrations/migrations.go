package migrations

import (
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Run creates the database schema. Column spellings match the historical
// store because the structured identifiers and reports depend on them.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS Users (
            username TEXT PRIMARY KEY,
            password_hash TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS Patients (
            UHId TEXT PRIMARY KEY,
            Date TEXT NOT NULL,
            PName TEXT NOT NULL,
            PhoneNo TEXT,
            Age INTEGER,
            Gender TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS Outpatient (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            OPDate TEXT NOT NULL,
            UHId TEXT NOT NULL,
            PaymentMode TEXT,
            AmountPaid INTEGER DEFAULT 0,
            FOREIGN KEY(UHId) REFERENCES Patients(UHId)
        );`,
		`CREATE TABLE IF NOT EXISTS Procedures (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            ProcDate TEXT NOT NULL,
            UHId TEXT NOT NULL,
            ProcedureName TEXT NOT NULL,
            PaymentMode TEXT,
            AmountPaid INTEGER DEFAULT 0,
            FOREIGN KEY(UHId) REFERENCES Patients(UHId)
        );`,
		`CREATE TABLE IF NOT EXISTS MedicineList (
            MId TEXT,
            MName TEXT NOT NULL,
            MCompany TEXT,
            MType TEXT,
            MRP REAL,
            PTR REAL,
            Weight TEXT,
            GST REAL,
            HSN TEXT,
            CurrentStock INTEGER DEFAULT 0,
            LastDeliveryDate TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS mAgencies (
            AgencyName TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS DeliveryBills (
            BillId TEXT PRIMARY KEY,
            BillNo TEXT NOT NULL,
            BillDate TEXT NOT NULL,
            DeliveryDate TEXT,
            MAgency TEXT,
            BillAmount REAL DEFAULT 0,
            TaxAmount REAL DEFAULT 0,
            BillTotal REAL DEFAULT 0,
            DiscountInBill INTEGER DEFAULT 0,
            DiscountAmount REAL DEFAULT 0,
            DiscountPercent REAL DEFAULT 0,
            BillPaymentStatus TEXT DEFAULT 'unpaid',
            BillPaymentDate TEXT,
            PaymentMode TEXT,
            AmountPaid REAL DEFAULT 0,
            TransactionDetails TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS StockDeliveries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            BillId TEXT NOT NULL,
            MName TEXT NOT NULL,
            Quantity INTEGER NOT NULL,
            BatchNo TEXT,
            ExpiryDate TEXT,
            DeliveryDate TEXT,
            Price REAL DEFAULT 0,
            Difference REAL DEFAULT 0,
            FOREIGN KEY(BillId) REFERENCES DeliveryBills(BillId)
        );`,
		`CREATE TABLE IF NOT EXISTS MedicineInvoices (
            InvoiceId TEXT PRIMARY KEY,
            InvoiceDate TEXT NOT NULL,
            UHId TEXT,
            PName TEXT,
            PhoneNo TEXT,
            TotalAmount REAL DEFAULT 0,
            Discount REAL DEFAULT 0,
            PaymentMode TEXT,
            CashAmount REAL DEFAULT 0,
            UPIAmount REAL DEFAULT 0,
            Comments TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS Pharmacy (
            SaleId TEXT PRIMARY KEY,
            InvoiceId TEXT NOT NULL,
            MId TEXT,
            Mstock INTEGER DEFAULT 0,
            MTotal REAL DEFAULT 0,
            BTotal REAL DEFAULT 0,
            PName TEXT,
            FOREIGN KEY(InvoiceId) REFERENCES MedicineInvoices(InvoiceId)
        );`,
		`CREATE VIEW IF NOT EXISTS vw_Name_counter AS
            SELECT substr(UHId, 5, 1) AS starting, COUNT(*) AS name_cou
            FROM Patients
            WHERE substr(UHId, 1, 4) = substr(strftime('%Y','now'), 3, 2) || strftime('%m','now')
            GROUP BY starting;`,
		`CREATE VIEW IF NOT EXISTS vw_CurrentStocks AS
            SELECT m.MName,
                   m.CurrentStock,
                   m.MType,
                   COALESCE(m.LastDeliveryDate, 'No delivery') AS LastDeliveryDate,
                   COALESCE(sd.ClosestToExpiry, 'No info') AS ClosestToExpiry,
                   m.MCompany
            FROM MedicineList m
            LEFT JOIN (
                SELECT MName, MIN(ExpiryDate) AS ClosestToExpiry
                FROM StockDeliveries
                WHERE ExpiryDate IS NOT NULL AND TRIM(ExpiryDate) <> ''
                GROUP BY MName
            ) sd ON TRIM(sd.MName) = TRIM(m.MName);`,
		`CREATE VIEW IF NOT EXISTS vw_getOPdetails AS
            SELECT p.UHId, p.PName, p.PhoneNo, p.Age, p.Gender,
                   'OP' AS OPProc, o.OPDate AS Date, o.PaymentMode, o.AmountPaid,
                   '' AS ProcName
            FROM Outpatient o JOIN Patients p ON p.UHId = o.UHId
            UNION ALL
            SELECT p.UHId, p.PName, p.PhoneNo, p.Age, p.Gender,
                   'Procedure', pr.ProcDate, pr.PaymentMode, pr.AmountPaid,
                   pr.ProcedureName
            FROM Procedures pr JOIN Patients p ON p.UHId = pr.UHId;`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}
}
