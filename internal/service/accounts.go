package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
	"github.com/mmeshcher/crunchy-waffle/internal/repository"
	"github.com/mmeshcher/crunchy-waffle/internal/validation"
)

const minPasswordLen = 4

// RegisterUser регистрирует нового покупателя с пустым кошельком.
func (s *Service) RegisterUser(ctx context.Context, username, phone, password string) (*model.User, error) {
	return s.createUser(ctx, username, phone, password, model.RoleUser)
}

// EnsureAdmin создаёт учётную запись администратора, если логин и телефон ещё свободны.
// Возвращает true, если учётная запись была создана.
func (s *Service) EnsureAdmin(ctx context.Context, username, phone, password string) (bool, error) {
	_, err := s.createUser(ctx, username, phone, password, model.RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) createUser(ctx context.Context, username, phone, password string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)
	phone = strings.TrimSpace(phone)

	if !validation.IsValidUsername(username) {
		return nil, invalid("username", "3-32 letters, digits, '_', '.' or '-'")
	}
	if !validation.IsValidPhone(phone) {
		return nil, invalid("phone", "10-15 digits")
	}
	if len(password) < minPasswordLen {
		return nil, invalid("password", fmt.Sprintf("at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.CreateUser(ctx, username, phone, hash, role)
}

// AuthenticateUser проверяет пароль пользователя, найденного по логину или телефону.
// Неизвестный идентификатор и неверный пароль неразличимы для вызывающего.
func (s *Service) AuthenticateUser(ctx context.Context, identifier, password string) (*model.User, error) {
	u, err := s.repo.GetUserByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// AdjustBalance изменяет баланс кошелька пользователя с указанным телефоном на amount (может быть отрицательным).
func (s *Service) AdjustBalance(ctx context.Context, phone string, amount float64) (float64, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return 0, invalid("phone", "required")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, invalid("amount", "must be a finite number")
	}
	if math.Abs(amount) > maxAmount {
		return 0, invalid("amount", "too large")
	}
	return s.repo.AdjustBalance(ctx, phone, amount)
}

// ListUsers возвращает всех пользователей. Хеши паролей не сериализуются.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = nil
	}
	return users, nil
}
