package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tranaskommun/tranas-forms/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler signs administrators in against the bcrypt hash from config.
// The service has no user accounts of its own; this is the delegation
// point for the host's capability check.
type AuthHandler struct {
	passwordHash string
	jwtSecret    string
	secureCookie bool
}

func NewAuthHandler(passwordHash, jwtSecret string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		secureCookie: secureCookie,
	}
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	type Input struct {
		Password string `json:"password"`
	}

	var input Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil || input.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if h.passwordHash == "" {
		utils.JSONError(w, http.StatusForbidden, "Admin login is not configured")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(input.Password)); err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Could not create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  now.Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Logged in successfully",
	})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Logged out successfully",
	})
}
