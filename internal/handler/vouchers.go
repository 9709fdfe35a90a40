package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

type createVoucherRequest struct {
	Code         string             `json:"code"`
	Discount     float64            `json:"discount"`
	DiscountType model.DiscountType `json:"discountType"`
}

// CreateVoucher создаёт новый ваучер.
func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var req createVoucherRequest
	if !h.decode(w, r, &req) {
		return
	}

	v, err := h.service.CreateVoucher(r.Context(), req.Code, req.Discount, req.DiscountType)
	if err != nil {
		h.respondError(w, err, "create voucher", zap.String("code", req.Code))
		return
	}
	h.writeJSON(w, http.StatusCreated, v)
}

type applyVoucherRequest struct {
	Code string `json:"code"`
}

type applyVoucherResponse struct {
	Code         string             `json:"code"`
	Discount     float64            `json:"discount"`
	DiscountType model.DiscountType `json:"discountType"`
}

// ApplyVoucher возвращает скидку активного ваучера.
func (h *Handler) ApplyVoucher(w http.ResponseWriter, r *http.Request) {
	var req applyVoucherRequest
	if !h.decode(w, r, &req) {
		return
	}

	v, err := h.service.ApplyVoucher(r.Context(), req.Code)
	if err != nil {
		h.respondError(w, err, "apply voucher", zap.String("code", req.Code))
		return
	}
	h.writeJSON(w, http.StatusOK, applyVoucherResponse{
		Code:         v.Code,
		Discount:     v.Discount,
		DiscountType: v.DiscountType,
	})
}
