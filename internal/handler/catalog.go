package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
	"github.com/mmeshcher/crunchy-waffle/internal/service"
)

// GetWaffles возвращает меню.
func (h *Handler) GetWaffles(w http.ResponseWriter, r *http.Request) {
	waffles, err := h.service.ListWaffles(r.Context())
	if err != nil {
		h.respondError(w, err, "list waffles")
		return
	}
	h.writeJSON(w, http.StatusOK, waffles)
}

type waffleRequest struct {
	Name        string        `json:"name"`
	Price       float64       `json:"price"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	AddOns      []model.AddOn `json:"addOns"`
}

// AddWaffle добавляет позицию в меню.
func (h *Handler) AddWaffle(w http.ResponseWriter, r *http.Request) {
	var req waffleRequest
	if !h.decode(w, r, &req) {
		return
	}

	waffle, err := h.service.AddWaffle(r.Context(), model.Waffle{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		AddOns:      req.AddOns,
	})
	if err != nil {
		h.respondError(w, err, "add waffle", zap.String("name", req.Name))
		return
	}

	h.logger.Info("waffle added", zap.String("id", waffle.ID), zap.String("name", waffle.Name))
	h.writeJSON(w, http.StatusCreated, waffle)
}

// DeleteWaffle удаляет позицию меню.
func (h *Handler) DeleteWaffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteWaffle(r.Context(), id); err != nil {
		h.respondError(w, err, "delete waffle", zap.String("id", id))
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted"})
}

// GetAbout возвращает страницу «О нас».
func (h *Handler) GetAbout(w http.ResponseWriter, r *http.Request) {
	about, err := h.service.GetAbout(r.Context())
	if err != nil {
		h.respondError(w, err, "get about")
		return
	}
	h.writeJSON(w, http.StatusOK, about)
}

// UpdateAbout обновляет страницу «О нас».
func (h *Handler) UpdateAbout(w http.ResponseWriter, r *http.Request) {
	var req model.About
	if !h.decode(w, r, &req) {
		return
	}

	about, err := h.service.UpdateAbout(r.Context(), req)
	if err != nil {
		h.respondError(w, err, "update about")
		return
	}
	h.writeJSON(w, http.StatusOK, about)
}

// GetLogo возвращает настройки логотипа.
func (h *Handler) GetLogo(w http.ResponseWriter, r *http.Request) {
	logo, err := h.service.GetLogo(r.Context())
	if err != nil {
		h.respondError(w, err, "get logo")
		return
	}
	h.writeJSON(w, http.StatusOK, logo)
}

type logoRequest struct {
	Width *string `json:"width"`
	X     *string `json:"x"`
	Y     *string `json:"y"`
}

// SaveLogo сохраняет настройки логотипа. Отсутствующие в запросе поля не изменяются.
func (h *Handler) SaveLogo(w http.ResponseWriter, r *http.Request) {
	var req logoRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.service.SaveLogo(r.Context(), service.LogoPatch{Width: req.Width, X: req.X, Y: req.Y}); err != nil {
		h.respondError(w, err, "save logo")
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Logo settings saved"})
}

type offerRequest struct {
	Text     *string `json:"text"`
	IsActive *bool   `json:"isActive"`
}

// GetOffer возвращает рекламный баннер.
func (h *Handler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.GetOffer(r.Context())
	if err != nil {
		h.respondError(w, err, "get offer")
		return
	}
	h.writeJSON(w, http.StatusOK, offer)
}

// UpdateOffer обновляет рекламный баннер.
func (h *Handler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if !h.decode(w, r, &req) {
		return
	}

	offer, err := h.service.UpdateOffer(r.Context(), service.OfferPatch{Text: req.Text, IsActive: req.IsActive})
	if err != nil {
		h.respondError(w, err, "update offer")
		return
	}
	h.writeJSON(w, http.StatusOK, offer)
}

// GetQR возвращает настройки QR-кода оплаты.
func (h *Handler) GetQR(w http.ResponseWriter, r *http.Request) {
	qr, err := h.service.GetQR(r.Context())
	if err != nil {
		h.respondError(w, err, "get qr")
		return
	}
	h.writeJSON(w, http.StatusOK, qr)
}

// SaveQR сохраняет ссылку на QR-код оплаты.
func (h *Handler) SaveQR(w http.ResponseWriter, r *http.Request) {
	var req model.QRSettings
	if !h.decode(w, r, &req) {
		return
	}

	qr, err := h.service.SaveQR(r.Context(), req.QRURL)
	if err != nil {
		h.respondError(w, err, "save qr")
		return
	}
	h.writeJSON(w, http.StatusOK, qr)
}
