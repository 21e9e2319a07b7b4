package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/pinfall/internal/share"
)

// Handler holds share route handlers.
type Handler struct {
	svc ShareService
}

// NewHandler creates a new Handler.
func NewHandler(svc ShareService) *Handler {
	return &Handler{svc: svc}
}

// CreateShare handles POST /api/share/create.
//
//	@Summary		Create a share link
//	@Tags			share
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateShareRequest	true	"Link to create"
//	@Success		200		{object}	CreateShareResponse
//	@Failure		400		{object}	errResponse
//	@Router			/share/create [post]
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("missing url"))
		return
	}

	resp, err := h.svc.Create(r.Context(), share.CreateRequest{
		URL:         req.URL,
		Campaign:    req.Campaign,
		ContentID:   req.ContentID,
		ChannelHint: req.ChannelHint,
	})
	if err != nil {
		writeError(w, "create share", err)
		return
	}
	writeJSON(w, http.StatusOK, CreateShareResponse{Token: resp.Token, ShareURL: resp.ShareURL})
}

// Redeem handles GET /s/{token}.
//
//	@Summary		Redirect a share link to its destination
//	@Tags			share
//	@Param			token	path	string	true	"Share token"
//	@Param			ch		query	string	false	"Channel hint"
//	@Success		302
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		410		{object}	errResponse
//	@Router			/s/{token} [get]
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.svc.Redeem(r.Context(), share.RedeemRequest{
		Token:     chi.URLParam(r, "token"),
		Channel:   r.URL.Query().Get("ch"),
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, "redeem share", err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, redirect.Location, http.StatusFound)
}

// RevokeShare handles DELETE /api/share/{token}.
//
//	@Summary		Revoke a share link
//	@Tags			share
//	@Param			token	path	string	true	"Share token"
//	@Success		204
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/share/{token} [delete]
func (h *Handler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Revoke(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeError(w, "revoke share", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ShareStats handles GET /api/share/{token}/stats.
//
//	@Summary		Click counts of a share link
//	@Tags			share
//	@Produce		json
//	@Param			token	path		string	true	"Share token"
//	@Success		200		{object}	ShareStatsResponse
//	@Failure		404		{object}	errResponse
//	@Failure		501		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/share/{token}/stats [get]
func (h *Handler) ShareStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, share.ErrStatsUnsupported) {
			writeJSON(w, http.StatusNotImplemented, errorBody(err.Error()))
			return
		}
		writeError(w, "share stats", err)
		return
	}
	writeJSON(w, http.StatusOK, ShareStatsResponse{Token: stats.Token, Total: stats.Total, Unique: stats.Unique})
}
