package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

type urlHandler struct {
	baseURL    string
	shortenUC  shortenUseCase
	redirectUC redirectUseCase
	validate   *validator.Validate
}

func newURLHandler(baseURL string, shortenUC shortenUseCase, redirectUC redirectUseCase, validate *validator.Validate) *urlHandler {
	return &urlHandler{
		baseURL:    baseURL,
		shortenUC:  shortenUC,
		redirectUC: redirectUC,
		validate:   validate,
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	res, err := h.shortenUC.Shorten(r.Context(), usecase.ShortenInput{
		OriginalURL: req.URL,
		CustomCode:  req.CustomCode,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	if res.Existing {
		render.Status(r, http.StatusOK)
	} else {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, toShortenResponse(h.baseURL, res.URL))
}

func (h *urlHandler) getURLInfo(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.redirectUC.Resolve(r.Context(), shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLInfoResponse(h.baseURL, url))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	originalURL, err := h.redirectUC.Redirect(r.Context(), shortCode, usecase.AccessMeta{
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
		Referrer:  r.Referer(),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	http.Redirect(w, r, originalURL, http.StatusTemporaryRedirect)
}

func (h *urlHandler) deleteURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	if err := h.shortenUC.Delete(r.Context(), shortCode); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
