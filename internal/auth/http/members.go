package http

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/tablechat/tablechat/internal/auth/domain"
	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/internal/auth/store"
	"github.com/tablechat/tablechat/pkg/httpx"
)

// JoinRequest is the JSON body for POST /members/join.
type JoinRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// MemberResponse is the public view of an account. Password material never
// leaves the service.
type MemberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Roles     []string  `json:"roles"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toMemberResponse(a domain.Account) MemberResponse {
	return MemberResponse{
		ID:        a.ID,
		Email:     a.Email,
		Nickname:  a.Nickname,
		Roles:     a.Roles,
		Provider:  a.Provider,
		CreatedAt: a.CreatedAt,
	}
}

// AvailabilityResponse answers the email/nickname availability probes.
type AvailabilityResponse struct {
	Available bool `json:"available"`
}

const minPasswordLength = 8

// JoinHandler serves POST /members/join, registering a new local account.
type JoinHandler struct {
	Identity *service.IdentityService
}

// ServeHTTP godoc
//
//	@Summary		Member Registration Endpoint
//	@Description	Registers a new local account with email, nickname, and password
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			request	body		JoinRequest	true	"registration details"
//	@Success		201		{object}	MemberResponse
//	@Failure		400		{object}	httpx.ErrorBody	"validation failure"
//	@Failure		409		{object}	httpx.ErrorBody	"email or nickname taken"
//	@Router			/members/join [post].
func (h *JoinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	}
	if req.Nickname == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "nickname is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "password must be at least 8 characters")
		return
	}

	account, err := h.Identity.Register(ctx, req.Email, req.Nickname, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toMemberResponse(account))
}

// EmailCheckHandler serves GET /members/email-check/{email}.
type EmailCheckHandler struct {
	Identity *service.IdentityService
}

// ServeHTTP godoc
//
//	@Summary	Email Availability Endpoint
//	@Tags		Members
//	@Produce	json
//	@Param		email	path		string	true	"email to check"
//	@Success	200		{object}	AvailabilityResponse
//	@Router		/members/email-check/{email} [get].
func (h *EmailCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	available, err := h.Identity.EmailAvailable(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, AvailabilityResponse{Available: available})
}

// NicknameCheckHandler serves GET /members/nickname-check/{nickname}.
type NicknameCheckHandler struct {
	Identity *service.IdentityService
}

// ServeHTTP godoc
//
//	@Summary	Nickname Availability Endpoint
//	@Tags		Members
//	@Produce	json
//	@Param		nickname	path		string	true	"nickname to check"
//	@Success	200			{object}	AvailabilityResponse
//	@Router		/members/nickname-check/{nickname} [get].
func (h *NicknameCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	available, err := h.Identity.NicknameAvailable(r.Context(), r.PathValue("nickname"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, AvailabilityResponse{Available: available})
}

// MeHandler serves GET /members/me for the authenticated caller.
type MeHandler struct {
	Store store.Store
}

// ServeHTTP godoc
//
//	@Summary	Current Member Endpoint
//	@Tags		Members
//	@Produce	json
//	@Success	200	{object}	MemberResponse
//	@Failure	401	{object}	httpx.ErrorBody	"not authenticated"
//	@Security	BearerAuth
//	@Router		/members/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := h.Store.Accounts().GetByID(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMemberResponse(account))
}

// ListMembersHandler serves GET /members, restricted to admins.
type ListMembersHandler struct {
	Store store.Store
}

// ServeHTTP godoc
//
//	@Summary	Member List Endpoint
//	@Tags		Members
//	@Produce	json
//	@Success	200	{array}		MemberResponse
//	@Failure	401	{object}	httpx.ErrorBody	"not authenticated"
//	@Failure	403	{object}	httpx.ErrorBody	"ADMIN role required"
//	@Security	BearerAuth
//	@Router		/members [get].
func (h *ListMembersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.Accounts().List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]MemberResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toMemberResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
