package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

// MemoryRepository хранит данные в памяти процесса. Используется, когда DATABASE_URI не задан.
// Все операции выполняются под одной блокировкой, поэтому подтверждение заказа атомарно.
type MemoryRepository struct {
	mu sync.Mutex

	seq      int64
	users    []*memUser
	orders   []*memOrder
	vouchers map[string]model.Voucher
	messages []*model.Message
	waffles  []model.Waffle
	settings map[string][]byte
}

type memUser struct {
	user    model.User
	balance int64
}

type memOrder struct {
	order model.Order
	seq   int64
}

// NewMemoryRepository создаёт пустое хранилище в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		vouchers: make(map[string]model.Voucher),
		settings: make(map[string][]byte),
	}
}

// Close ничего не делает.
func (m *MemoryRepository) Close() error { return nil }

func (m *MemoryRepository) userSnapshot(u *memUser) model.User {
	res := u.user
	res.WalletBalance = fromCents(u.balance)
	res.PasswordHash = bytes.Clone(u.user.PasswordHash)
	return res
}

// CreateUser создаёт нового пользователя с нулевым кошельком.
func (m *MemoryRepository) CreateUser(_ context.Context, username, phone string, passwordHash []byte, role model.Role) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.user.Username == username || u.user.Phone == phone {
			return nil, fmt.Errorf("%w: user %s", ErrDuplicateKey, username)
		}
	}

	u := &memUser{user: model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Phone:        phone,
		PasswordHash: bytes.Clone(passwordHash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}}
	m.users = append(m.users, u)

	res := m.userSnapshot(u)
	return &res, nil
}

// GetUserByIdentifier ищет пользователя по логину или телефону. Совпадение по логину приоритетнее.
func (m *MemoryRepository) GetUserByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var byPhone *memUser
	for _, u := range m.users {
		if u.user.Username == identifier {
			res := m.userSnapshot(u)
			return &res, nil
		}
		if byPhone == nil && u.user.Phone == identifier {
			byPhone = u
		}
	}
	if byPhone == nil {
		return nil, ErrNotFound
	}
	res := m.userSnapshot(byPhone)
	return &res, nil
}

// AdjustBalance изменяет баланс кошелька пользователя и возвращает новый баланс.
func (m *MemoryRepository) AdjustBalance(_ context.Context, phone string, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.user.Phone == phone {
			balance, ok := addInt64(u.balance, toCents(delta))
			if !ok {
				return 0, fmt.Errorf("%w: balance of %s", ErrOutOfRange, phone)
			}
			u.balance = balance
			return fromCents(u.balance), nil
		}
	}
	return 0, fmt.Errorf("%w: user with phone %s", ErrNotFound, phone)
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (m *MemoryRepository) ListUsers(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		res = append(res, m.userSnapshot(u))
	}
	return res, nil
}

// CreateOrder сохраняет новый заказ в статусе Pending.
func (m *MemoryRepository) CreateOrder(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(o.Items) == 0 {
		o.Items = json.RawMessage("[]")
	}
	o.ID = uuid.NewString()
	o.Status = model.OrderStatusPending
	o.CreatedAt = time.Now().UTC()

	m.seq++
	stored := *o
	stored.Items = bytes.Clone(o.Items)
	m.orders = append(m.orders, &memOrder{order: stored, seq: m.seq})
	return nil
}

// ApproveOrder переводит заказ в Approved и применяет списание и начисление баллов владельцу.
func (m *MemoryRepository) ApproveOrder(_ context.Context, id string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var target *memOrder
	for _, o := range m.orders {
		if o.order.ID == id {
			target = o
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if target.order.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: order %s", ErrAlreadyProcessed, id)
	}

	var owner *memUser
	for _, u := range m.users {
		if u.user.Username == target.order.Username {
			owner = u
			break
		}
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, target.order.Username)
	}

	balance, ok := addInt64(owner.balance, -toCents(target.order.WalletDeducted))
	if !ok {
		return nil, fmt.Errorf("%w: balance of %s", ErrOutOfRange, owner.user.Username)
	}
	points, ok := addInt64(owner.user.LoyaltyPoints, target.order.PointsEarned)
	if !ok || points < 0 {
		return nil, fmt.Errorf("%w: points of %s", ErrOutOfRange, owner.user.Username)
	}

	owner.balance = balance
	owner.user.LoyaltyPoints = points
	target.order.Status = model.OrderStatusApproved

	res := target.order
	return &res, nil
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (m *MemoryRepository) GetOrdersByUser(_ context.Context, username string) ([]model.Order, error) {
	return m.listOrders(func(o *model.Order) bool { return o.Username == username }), nil
}

// GetAllOrders возвращает все заказы, новые первыми.
func (m *MemoryRepository) GetAllOrders(_ context.Context) ([]model.Order, error) {
	return m.listOrders(func(*model.Order) bool { return true }), nil
}

func (m *MemoryRepository) listOrders(match func(*model.Order) bool) []model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	selected := make([]*memOrder, 0, len(m.orders))
	for _, o := range m.orders {
		if match(&o.order) {
			selected = append(selected, o)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			return a.order.CreatedAt.After(b.order.CreatedAt)
		}
		return a.seq > b.seq
	})

	res := make([]model.Order, 0, len(selected))
	for _, o := range selected {
		res = append(res, o.order)
	}
	return res
}

// CreateVoucher сохраняет новый ваучер.
func (m *MemoryRepository) CreateVoucher(_ context.Context, v *model.Voucher) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vouchers[v.Code]; ok {
		return fmt.Errorf("%w: voucher %s", ErrDuplicateKey, v.Code)
	}
	v.CreatedAt = time.Now().UTC()
	m.vouchers[v.Code] = *v
	return nil
}

// GetVoucher возвращает ваучер по коду независимо от его активности.
func (m *MemoryRepository) GetVoucher(_ context.Context, code string) (*model.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vouchers[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

// CreateMessage сохраняет обращение покупателя.
func (m *MemoryRepository) CreateMessage(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	stored := *msg
	m.messages = append(m.messages, &stored)
	return nil
}

// ListMessages возвращает все обращения, новые первыми.
func (m *MemoryRepository) ListMessages(_ context.Context) ([]model.Message, error) {
	return m.listMessages(func(*model.Message) bool { return true }), nil
}

// ListMessagesByUser возвращает обращения пользователя, новые первыми.
func (m *MemoryRepository) ListMessagesByUser(_ context.Context, username string) ([]model.Message, error) {
	return m.listMessages(func(msg *model.Message) bool { return msg.Username == username }), nil
}

func (m *MemoryRepository) listMessages(match func(*model.Message) bool) []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.Message, 0, len(m.messages))
	for i := len(m.messages) - 1; i >= 0; i-- {
		if match(m.messages[i]) {
			res = append(res, *m.messages[i])
		}
	}
	return res
}

// ReplyMessage сохраняет ответ администратора на обращение.
func (m *MemoryRepository) ReplyMessage(_ context.Context, id, reply string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range m.messages {
		if msg.ID == id {
			now := time.Now().UTC()
			msg.Reply = reply
			msg.RepliedAt = &now
			return nil
		}
	}
	return fmt.Errorf("%w: message %s", ErrNotFound, id)
}

// ListWaffles возвращает меню в порядке добавления позиций.
func (m *MemoryRepository) ListWaffles(_ context.Context) ([]model.Waffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.Waffle, len(m.waffles))
	copy(res, m.waffles)
	return res, nil
}

// CreateWaffle добавляет позицию в меню.
func (m *MemoryRepository) CreateWaffle(_ context.Context, w *model.Waffle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertWaffle(w)
	return nil
}

// SeedWaffle добавляет позицию только если меню пустое.
func (m *MemoryRepository) SeedWaffle(_ context.Context, w *model.Waffle) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.waffles) > 0 {
		return false, nil
	}
	m.insertWaffle(w)
	return true, nil
}

func (m *MemoryRepository) insertWaffle(w *model.Waffle) {
	if w.AddOns == nil {
		w.AddOns = []model.AddOn{}
	}
	w.ID = uuid.NewString()
	w.CreatedAt = time.Now().UTC()
	m.waffles = append(m.waffles, *w)
}

// DeleteWaffle удаляет позицию меню. Отсутствие позиции ошибкой не считается.
func (m *MemoryRepository) DeleteWaffle(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, w := range m.waffles {
		if w.ID == id {
			m.waffles = append(m.waffles[:i], m.waffles[i+1:]...)
			return nil
		}
	}
	return nil
}

// GetSetting декодирует настройку с ключом key в dst.
func (m *MemoryRepository) GetSetting(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.settings[key]
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

// PutSetting создаёт или перезаписывает настройку с ключом key.
func (m *MemoryRepository) PutSetting(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}

	m.mu.Lock()
	m.settings[key] = raw
	m.mu.Unlock()
	return nil
}
