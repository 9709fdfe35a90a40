package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
	"github.com/mmeshcher/crunchy-waffle/internal/service"
)

type createOrderRequest struct {
	Username       string          `json:"username"`
	Items          json.RawMessage `json:"items"`
	Total          float64         `json:"total"`
	WalletDeducted float64         `json:"walletDeducted"`
	CashPaid       float64         `json:"cashPaid"`
	TransactionID  string          `json:"transactionId"`
}

type createOrderResponse struct {
	Message      string `json:"message"`
	OrderID      string `json:"orderId"`
	PointsEarned int64  `json:"pointsEarned"`
}

// CreateOrder оформляет заказ в статусе Pending.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	o, err := h.service.CreateOrder(r.Context(), service.NewOrder{
		Username:       req.Username,
		Items:          req.Items,
		Total:          req.Total,
		WalletDeducted: req.WalletDeducted,
		CashPaid:       req.CashPaid,
		TransactionID:  req.TransactionID,
	})
	if err != nil {
		h.respondError(w, err, "create order", zap.String("username", req.Username))
		return
	}

	h.logger.Info("order created", zap.String("order", o.ID), zap.String("username", o.Username))
	h.writeJSON(w, http.StatusCreated, createOrderResponse{
		Message:      "Order placed",
		OrderID:      o.ID,
		PointsEarned: o.PointsEarned,
	})
}

type approveOrderRequest struct {
	OrderID string `json:"orderId"`
}

type approveOrderResponse struct {
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

// ApproveOrder подтверждает заказ и применяет списание с кошелька и начисление баллов.
func (h *Handler) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	var req approveOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	o, err := h.service.ApproveOrder(r.Context(), req.OrderID)
	if err != nil {
		h.respondError(w, err, "approve order", zap.String("order", req.OrderID))
		return
	}

	h.logger.Info("order approved",
		zap.String("order", o.ID),
		zap.String("username", o.Username),
		zap.Float64("walletDeducted", o.WalletDeducted),
		zap.Int64("pointsEarned", o.PointsEarned),
	)
	h.writeJSON(w, http.StatusOK, approveOrderResponse{Message: "Order approved", Order: o})
}

// GetUserOrders возвращает заказы пользователя, новые первыми.
func (h *Handler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	orders, err := h.service.GetOrdersByUser(r.Context(), username)
	if err != nil {
		h.respondError(w, err, "get user orders", zap.String("username", username))
		return
	}
	h.writeOrders(w, orders)
}

// GetAllOrders возвращает все заказы, новые первыми.
func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetAllOrders(r.Context())
	if err != nil {
		h.respondError(w, err, "get all orders")
		return
	}
	h.writeOrders(w, orders)
}

func (h *Handler) writeOrders(w http.ResponseWriter, orders []model.Order) {
	if orders == nil {
		orders = []model.Order{}
	}
	h.writeJSON(w, http.StatusOK, orders)
}
