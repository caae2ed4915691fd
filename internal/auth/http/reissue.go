package http

import (
	"encoding/json"
	"net/http"

	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/pkg/httpx"
)

// ReissueRequest is the JSON body fallback for POST /auth/reissue. Clients
// normally send the refresh token in the Refresh header instead.
type ReissueRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ReissueHandler serves POST /auth/reissue. The presented refresh token is
// rotated: it stops working and a brand new pair comes back.
type ReissueHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Token Reissue Endpoint
//	@Description	Exchanges a valid refresh token for a new access/refresh pair, invalidating the old refresh token
//	@Description	The refresh token is read from the Refresh header, falling back to the JSON body
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			Refresh	header		string			false	"refresh token"
//	@Param			request	body		ReissueRequest	false	"refresh token fallback"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		400		{object}	httpx.ErrorBody	"no refresh token supplied"
//	@Failure		401		{object}	httpx.ErrorBody	"invalid, expired, or already-rotated refresh token"
//	@Failure		503		{object}	httpx.ErrorBody	"revocation store unavailable"
//	@Router			/auth/reissue [post].
func (h *ReissueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.Header.Get("Refresh")
	if token == "" && r.Body != nil {
		var req ReissueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh token is required")
		return
	}

	pair, err := h.Auth.Reissue(ctx, token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeTokenPair(w, pair)
}
