// Package repository содержит реализации хранилища данных: PostgreSQL и хранилище в памяти.
package repository

import (
	"errors"
	"math"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

var (
	// ErrDuplicateKey возвращается при нарушении уникальности (логин, телефон, код ваучера).
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound возвращается, если запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyProcessed возвращается при попытке повторно подтвердить заказ.
	ErrAlreadyProcessed = errors.New("order already processed")
	// ErrOutOfRange возвращается, если баланс или баллы выходят за допустимый диапазон.
	ErrOutOfRange = errors.New("value out of range")
)

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(v int64) float64 {
	return float64(v) / 100
}

// addInt64 складывает с проверкой переполнения.
func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// DefaultWaffle возвращает позицию, которой заполняется пустое меню при старте.
func DefaultWaffle() model.Waffle {
	return model.Waffle{
		Name:        "Nutella Bliss",
		Price:       149,
		Description: "Crispy waffle loaded with Nutella",
		Image:       "https://images.unsplash.com/photo-1562376552-0d160a2f238d?w=800",
		AddOns:      []model.AddOn{},
	}
}
