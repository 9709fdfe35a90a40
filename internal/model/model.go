// Package model содержит доменные сущности сервиса вафельной.
package model

import (
	"encoding/json"
	"time"
)

// Role описывает роль пользователя.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User представляет зарегистрированного покупателя вместе с кошельком и баллами лояльности.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Phone         string    `json:"phone"`
	PasswordHash  []byte    `json:"-"`
	WalletBalance float64   `json:"walletBalance"`
	LoyaltyPoints int64     `json:"loyaltyPoints"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "Pending"
	OrderStatusApproved OrderStatus = "Approved"
	// OrderStatusCancelled зарезервирован, переходов в него нет.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// DefaultTransactionID подставляется, если клиент не передал номер транзакции.
const DefaultTransactionID = "N/A"

// Order описывает заказ покупателя и связанные с ним списания и начисления.
type Order struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Items          json.RawMessage `json:"items"`
	Total          float64         `json:"total"`
	WalletDeducted float64         `json:"walletDeducted"`
	CashPaid       float64         `json:"cashPaid"`
	TransactionID  string          `json:"transactionId"`
	PointsEarned   int64           `json:"pointsEarned"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// DiscountType описывает единицу измерения скидки ваучера.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Voucher описывает промокод.
type Voucher struct {
	Code         string       `json:"code"`
	Discount     float64      `json:"discount"`
	DiscountType DiscountType `json:"discountType"`
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Message описывает обращение покупателя и ответ администратора.
type Message struct {
	ID        string     `json:"id"`
	Username  string     `json:"username,omitempty"`
	Name      string     `json:"name"`
	Text      string     `json:"message"`
	Reply     string     `json:"reply"`
	CreatedAt time.Time  `json:"createdAt"`
	RepliedAt *time.Time `json:"repliedAt,omitempty"`
}

// AddOn описывает дополнительную опцию к вафле.
type AddOn struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Waffle описывает позицию меню.
type Waffle struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	AddOns      []AddOn   `json:"addOns"`
	CreatedAt   time.Time `json:"createdAt"`
}

// About содержит текст страницы «О нас».
type About struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Image   string `json:"image,omitempty"`
}

// LogoSettings описывает размер и положение логотипа.
type LogoSettings struct {
	Width string `json:"width"`
	X     string `json:"x"`
	Y     string `json:"y"`
}

// Offer описывает рекламный баннер.
type Offer struct {
	Text     string `json:"text"`
	IsActive bool   `json:"isActive"`
}

// QRSettings содержит ссылку на QR-код для оплаты.
type QRSettings struct {
	QRURL string `json:"qrUrl"`
}

// Ключи настроек-одиночек в хранилище.
const (
	SettingAbout = "about"
	SettingLogo  = "logo"
	SettingOffer = "offer"
	SettingQR    = "qr"
)

// DefaultLogo возвращает настройки логотипа по умолчанию.
func DefaultLogo() LogoSettings {
	return LogoSettings{Width: "200px", X: "0px", Y: "0px"}
}
