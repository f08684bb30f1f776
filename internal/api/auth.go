package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var storedHash string
	err := h.db.Get(&storedHash, `SELECT password_hash FROM Users WHERE username = ?`, req.Username)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		respondAppErr(w, dbErr(err, "login failed", "SELECT password_hash FROM Users", req.Username))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := h.generateToken(req.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"username": req.Username,
		"message":  "Login successful",
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var exists int
	if err := h.db.Get(&exists, `SELECT COUNT(*) FROM Users WHERE username = ?`, req.Username); err != nil {
		respondAppErr(w, dbErr(err, "registration failed", "SELECT COUNT(*) FROM Users", req.Username))
		return
	}
	if exists > 0 {
		respondError(w, http.StatusConflict, "username already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	if _, err := h.db.Exec(`INSERT INTO Users (username, password_hash) VALUES (?, ?)`, req.Username, string(hashed)); err != nil {
		respondAppErr(w, dbErr(err, "registration failed", "INSERT INTO Users", req.Username))
		return
	}

	token, err := h.generateToken(req.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"token":    token,
		"username": req.Username,
		"message":  "Registration successful",
	})
}

func (h *Handler) verifyToken(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"username": h.currentUser(r),
	})
}

// Tokens are stateless; logout exists so clients have a uniform call to
// drop theirs against.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
