// Package service реализует бизнес-логику сервиса вафельной.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

var (
	// ErrInvalidCredentials возвращается при неверном логине/телефоне или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidVoucher возвращается, если ваучер не существует или неактивен.
	ErrInvalidVoucher = errors.New("invalid voucher")
)

// ValidationError описывает некорректное или отсутствующее поле запроса.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// maxAmount ограничивает любую денежную сумму, чтобы значение в копейках и накопленные балансы помещались в int64.
const maxAmount = 1e13

// checkAmount проверяет неотрицательную сумму: заказ, цена, скидка.
func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid(field, "must be a non-negative number")
	}
	if v > maxAmount {
		return invalid(field, "too large")
	}
	return nil
}

// roundCents приводит сумму к копейкам, в которых она хранится.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, username, phone string, passwordHash []byte, role model.Role) (*model.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	AdjustBalance(ctx context.Context, phone string, delta float64) (float64, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	CreateOrder(ctx context.Context, o *model.Order) error
	ApproveOrder(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, username string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)

	CreateVoucher(ctx context.Context, v *model.Voucher) error
	GetVoucher(ctx context.Context, code string) (*model.Voucher, error)

	CreateMessage(ctx context.Context, m *model.Message) error
	ListMessages(ctx context.Context) ([]model.Message, error)
	ListMessagesByUser(ctx context.Context, username string) ([]model.Message, error)
	ReplyMessage(ctx context.Context, id, reply string) error

	ListWaffles(ctx context.Context) ([]model.Waffle, error)
	CreateWaffle(ctx context.Context, w *model.Waffle) error
	SeedWaffle(ctx context.Context, w *model.Waffle) (bool, error)
	DeleteWaffle(ctx context.Context, id string) error

	GetSetting(ctx context.Context, key string, dst any) (bool, error)
	PutSetting(ctx context.Context, key string, value any) error
}

// Service содержит бизнес-логику сервиса вафельной.
type Service struct {
	repo         Repository
	passwordCost int
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository) *Service {
	return &Service{
		repo:         repo,
		passwordCost: bcrypt.DefaultCost,
	}
}

// WithPasswordCost задаёт стоимость bcrypt. Используется в тестах, чтобы не тратить время на хеширование.
func (s *Service) WithPasswordCost(cost int) *Service {
	s.passwordCost = cost
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
