package service

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

// centsPerPoint: один балл за каждые 10 единиц суммы заказа.
const centsPerPoint = 1000

// PointsForTotal вычисляет баллы лояльности за заказ: floor(total * 0.10).
// Сумма сначала округляется до копеек, как при хранении: 9.999 считается как 10.00.
func PointsForTotal(total float64) int64 {
	if math.IsNaN(total) || total <= 0 || total > maxAmount {
		return 0
	}
	// Целочисленное деление в копейках: total*0.1 в float64 даёт 99.99999 для некоторых сумм.
	return int64(math.Round(total*100)) / centsPerPoint
}

// NewOrder содержит данные заказа, переданные покупателем.
type NewOrder struct {
	Username       string
	Items          json.RawMessage
	Total          float64
	WalletDeducted float64
	CashPaid       float64
	TransactionID  string
}

// CreateOrder сохраняет заказ в статусе Pending. Кошелёк и баллы изменяются только при подтверждении.
func (s *Service) CreateOrder(ctx context.Context, req NewOrder) (*model.Order, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, invalid("username", "required")
	}
	amounts := []struct {
		field string
		value float64
	}{
		{"total", req.Total},
		{"walletDeducted", req.WalletDeducted},
		{"cashPaid", req.CashPaid},
	}
	for _, a := range amounts {
		if err := checkAmount(a.field, a.value); err != nil {
			return nil, err
		}
	}
	total := roundCents(req.Total)
	walletDeducted := roundCents(req.WalletDeducted)
	if walletDeducted > total {
		return nil, invalid("walletDeducted", "exceeds order total")
	}

	items := bytes.TrimSpace(req.Items)
	if len(items) == 0 || bytes.Equal(items, []byte("null")) {
		items = []byte("[]")
	}
	if items[0] != '[' || !json.Valid(items) {
		return nil, invalid("items", "must be a JSON array")
	}

	transactionID := strings.TrimSpace(req.TransactionID)
	if transactionID == "" {
		transactionID = model.DefaultTransactionID
	}

	o := &model.Order{
		Username:       username,
		Items:          json.RawMessage(items),
		Total:          total,
		WalletDeducted: walletDeducted,
		CashPaid:       roundCents(req.CashPaid),
		TransactionID:  transactionID,
		PointsEarned:   PointsForTotal(total),
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ApproveOrder подтверждает заказ: списывает walletDeducted и начисляет pointsEarned владельцу ровно один раз.
// Повторное подтверждение возвращает repository.ErrAlreadyProcessed.
func (s *Service) ApproveOrder(ctx context.Context, id string) (*model.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalid("orderId", "required")
	}
	return s.repo.ApproveOrder(ctx, id)
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (s *Service) GetOrdersByUser(ctx context.Context, username string) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, username)
}

// GetAllOrders возвращает все заказы, новые первыми.
func (s *Service) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.GetAllOrders(ctx)
}
