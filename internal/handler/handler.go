// Package handler содержит HTTP-обработчики API сервиса вафельной.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/crunchy-waffle/internal/middleware"
	"github.com/mmeshcher/crunchy-waffle/internal/model"
	"github.com/mmeshcher/crunchy-waffle/internal/repository"
	"github.com/mmeshcher/crunchy-waffle/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, username, phone, password string) (*model.User, error)
	AuthenticateUser(ctx context.Context, identifier, password string) (*model.User, error)
	AdjustBalance(ctx context.Context, phone string, amount float64) (float64, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	CreateOrder(ctx context.Context, req service.NewOrder) (*model.Order, error)
	ApproveOrder(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, username string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)

	CreateVoucher(ctx context.Context, code string, discount float64, discountType model.DiscountType) (*model.Voucher, error)
	ApplyVoucher(ctx context.Context, code string) (*model.Voucher, error)

	PostMessage(ctx context.Context, username, name, text string) (*model.Message, error)
	ListMessages(ctx context.Context) ([]model.Message, error)
	ListUserMessages(ctx context.Context, username string) ([]model.Message, error)
	ReplyMessage(ctx context.Context, id, reply string) error

	ListWaffles(ctx context.Context) ([]model.Waffle, error)
	AddWaffle(ctx context.Context, w model.Waffle) (*model.Waffle, error)
	DeleteWaffle(ctx context.Context, id string) error

	GetAbout(ctx context.Context) (*model.About, error)
	UpdateAbout(ctx context.Context, patch model.About) (*model.About, error)
	GetLogo(ctx context.Context) (*model.LogoSettings, error)
	SaveLogo(ctx context.Context, patch service.LogoPatch) (*model.LogoSettings, error)
	GetOffer(ctx context.Context) (*model.Offer, error)
	UpdateOffer(ctx context.Context, patch service.OfferPatch) (*model.Offer, error)
	GetQR(ctx context.Context) (*model.QRSettings, error)
	SaveQR(ctx context.Context, qrURL string) (*model.QRSettings, error)
}

// Handler реализует HTTP-обработчики API сервиса вафельной.
type Handler struct {
	service   Service
	logger    *zap.Logger
	adminGate *middleware.AdminGate
	staticDir string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, gate *middleware.AdminGate, staticDir string) *Handler {
	return &Handler{
		service:   s,
		logger:    logger,
		adminGate: gate,
		staticDir: staticDir,
	}
}

// Коды ошибок в теле ответа.
const (
	codeDuplicateKey       = "DUPLICATE_KEY"
	codeInvalidCredentials = "INVALID_CREDENTIALS"
	codeNotFound           = "NOT_FOUND"
	codeAlreadyProcessed   = "ALREADY_PROCESSED"
	codeValidation         = "VALIDATION_ERROR"
	codeInvalidVoucher     = "INVALID_VOUCHER"
	codeInternal           = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("write response error", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// respondError отображает ошибку сервиса в HTTP-статус. Неклассифицированные ошибки логируются.
func (h *Handler) respondError(w http.ResponseWriter, err error, op string, fields ...zap.Field) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.writeError(w, http.StatusBadRequest, codeValidation, vErr.Error())
	case errors.Is(err, repository.ErrDuplicateKey):
		h.writeError(w, http.StatusConflict, codeDuplicateKey, "record already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials")
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, repository.ErrAlreadyProcessed):
		h.writeError(w, http.StatusConflict, codeAlreadyProcessed, "order already processed")
	case errors.Is(err, repository.ErrOutOfRange):
		h.writeError(w, http.StatusBadRequest, codeValidation, "amount out of range")
	case errors.Is(err, service.ErrInvalidVoucher):
		h.writeError(w, http.StatusBadRequest, codeInvalidVoucher, "invalid or inactive voucher")
	default:
		h.logger.Error(op+" error", append(fields, zap.Error(err))...)
		h.writeError(w, http.StatusInternalServerError, codeInternal, http.StatusText(http.StatusInternalServerError))
	}
}

// decode читает JSON-тело запроса в dst. При ошибке отвечает 400 и возвращает false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, codeValidation, "malformed JSON body")
		return false
	}
	return true
}
