package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"medbill/m/internal/apperr"
	"medbill/m/internal/idgen"
)

type ctxKey string

const ctxUser ctxKey = "username"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	secret   string
	tokenTTL time.Duration
	ids      *idgen.Generator
	now      func() time.Time
}

// New constructs a Handler. The id generator shares the handler's
// clock so both sides agree on today.
func New(db *sqlx.DB, secret string, tokenTTL time.Duration) *Handler {
	h := &Handler{
		db:       db,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
	h.ids = idgen.NewWithClock(db, func() time.Time { return h.now() })
	return h
}

// Router wires up the HTTP API. Route prefixes mirror the practice's
// original module split: patient desk, stock inventory, pharmacy
// counter, supplier payments and reports.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", h.health)
	r.Get("/keep-alive", h.keepAlive)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/register", h.register)
		r.Post("/logout", h.logout)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Get("/verify", h.verifyToken)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/patient/api", func(r chi.Router) {
			r.Get("/today", h.todayEntries)
			r.Post("/register", h.registerPatient)
			r.Get("/search", h.searchPatients)
			r.Get("/generate-uhid", h.generateUHID)
		})

		pr.Route("/inventory/api", func(r chi.Router) {
			r.Get("/agencies", h.listAgencies)
			r.Get("/medicines", h.listMedicineNames)
			r.Get("/medicine-types", h.medicineTypes)
			r.Get("/medicine/{name}", h.medicineDetails)
			r.Post("/medicine/new", h.addMedicine)
			r.Post("/medicine/update-price", h.updateMedicinePrice)
			r.Post("/bill", h.saveDeliveryBill)
		})

		pr.Route("/pharmacy/api", func(r chi.Router) {
			r.Get("/today-patients", h.todayPatients)
			r.Get("/medicines", h.listMedicines)
			r.Get("/medicine/{mid}", h.medicineByID)
			r.Get("/medicine-details", h.medicineDetailsByName)
			r.Get("/next-uhid", h.nextUHID)
			r.Post("/invoice", h.createInvoice)
			r.Get("/last-invoice", h.lastInvoice)
		})

		pr.Route("/payments/api", func(r chi.Router) {
			r.Get("/bills", h.listBills)
			r.Get("/agencies", h.billAgencies)
			r.Post("/bulk-payment-update", h.bulkPaymentUpdate)
			r.Post("/update-payment-status", h.updatePaymentStatus)
			r.Post("/mark-paid/{billId}", h.markBillPaid)
		})

		pr.Route("/reports/api", func(r chi.Router) {
			r.Get("/stock", h.stockReport)
			r.Get("/filters", h.stockFilters)
			r.Get("/statistics", h.stockStatistics)
			r.Get("/sales", h.salesReport)
			r.Get("/sales/summary", h.salesSummary)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// Health endpoints stay side-effect free; the keep-alive pinger and the
// hosting platform both probe them.

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
		"message":   "IMS system is running",
	})
}

func (h *Handler) keepAlive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// Authentication

type authClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(username string) (string, error) {
	claims := authClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(h.now().Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(h.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "authentication token is missing")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok || claims.Username == "" {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUser, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) currentUser(r *http.Request) string {
	if user, ok := r.Context().Value(ctxUser).(string); ok {
		return user
	}
	return ""
}

// Helpers

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondAppErr is the single translation layer from error categories to
// HTTP status codes.
func respondAppErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Conflict:
		status = http.StatusConflict
	}
	respondError(w, status, err.Error())
}

// dbErr logs a failed statement with its query text and arguments before
// wrapping it as a data-access error.
func dbErr(err error, msg, query string, args ...any) *apperr.Error {
	log.Error().Err(err).Str("query", query).Interface("args", args).Msg("sql execute failed")
	return apperr.DataAccessErr(msg, err)
}
