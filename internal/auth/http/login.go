package http

import (
	"encoding/json"
	"net/http"

	"github.com/tablechat/tablechat/internal/auth/domain"
	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/pkg/httpx"
)

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler serves POST /auth/login. Successful logins return a fresh
// access/refresh pair; every credential failure is the same 401.
type LoginHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Local Login Endpoint
//	@Description	Authenticates an email/password pair and issues an access/refresh token pair
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"credentials"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		400		{object}	httpx.ErrorBody	"malformed request body"
//	@Failure		401		{object}	httpx.ErrorBody	"invalid credentials"
//	@Failure		503		{object}	httpx.ErrorBody	"revocation store unavailable"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeTokenPair(w, pair)
}

// writeTokenPair sends the pair both in the response body and in the
// Authorization/Refresh headers, matching what mobile clients expect.
func writeTokenPair(w http.ResponseWriter, pair *domain.TokenPair) {
	w.Header().Set("Authorization", "Bearer "+pair.AccessToken)
	w.Header().Set("Refresh", pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
