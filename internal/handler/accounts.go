package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

type registerRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового покупателя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.RegisterUser(r.Context(), req.Username, req.Phone, req.Password)
	if err != nil {
		h.respondError(w, err, "register user", zap.String("username", req.Username))
		return
	}

	h.logger.Info("user registered", zap.String("username", u.Username))
	h.writeJSON(w, http.StatusCreated, messageResponse{Message: "Registration successful"})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
}

func (req loginRequest) identifier() string {
	switch {
	case req.Identifier != "":
		return req.Identifier
	case req.Username != "":
		return req.Username
	default:
		return req.Phone
	}
}

type loginResponse struct {
	Message       string     `json:"message"`
	Role          model.Role `json:"role"`
	Username      string     `json:"username"`
	Phone         string     `json:"phone"`
	WalletBalance float64    `json:"walletBalance"`
	LoyaltyPoints int64      `json:"loyaltyPoints"`
}

// Login выполняет аутентификацию по логину или телефону.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.AuthenticateUser(r.Context(), req.identifier(), req.Password)
	if err != nil {
		h.respondError(w, err, "login user")
		return
	}

	h.writeJSON(w, http.StatusOK, loginResponse{
		Message:       "Login successful",
		Role:          u.Role,
		Username:      u.Username,
		Phone:         u.Phone,
		WalletBalance: u.WalletBalance,
		LoyaltyPoints: u.LoyaltyPoints,
	})
}

// GetUsers возвращает список пользователей без хешей паролей.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, err, "list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	h.writeJSON(w, http.StatusOK, users)
}

type updateWalletRequest struct {
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
}

type updateWalletResponse struct {
	Message    string  `json:"message"`
	NewBalance float64 `json:"newBalance"`
}

// UpdateWallet изменяет баланс кошелька пользователя на переданную сумму.
func (h *Handler) UpdateWallet(w http.ResponseWriter, r *http.Request) {
	var req updateWalletRequest
	if !h.decode(w, r, &req) {
		return
	}

	balance, err := h.service.AdjustBalance(r.Context(), req.Phone, req.Amount)
	if err != nil {
		h.respondError(w, err, "update wallet", zap.String("phone", req.Phone))
		return
	}

	h.logger.Info("wallet adjusted", zap.String("phone", req.Phone), zap.Float64("amount", req.Amount))
	h.writeJSON(w, http.StatusOK, updateWalletResponse{Message: "Wallet updated", NewBalance: balance})
}
