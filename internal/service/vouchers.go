package service

import (
	"context"
	"errors"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
	"github.com/mmeshcher/crunchy-waffle/internal/repository"
	"github.com/mmeshcher/crunchy-waffle/internal/validation"
)

// CreateVoucher создаёт активный ваучер. Пустой тип скидки означает проценты.
func (s *Service) CreateVoucher(ctx context.Context, code string, discount float64, discountType model.DiscountType) (*model.Voucher, error) {
	code = validation.NormalizeVoucherCode(code)
	if !validation.IsValidVoucherCode(code) {
		return nil, invalid("code", "3-32 characters A-Z, 0-9, '-' or '_'")
	}

	if discountType == "" {
		discountType = model.DiscountPercent
	}
	switch discountType {
	case model.DiscountPercent:
		if discount > 100 {
			return nil, invalid("discount", "percent discount must not exceed 100")
		}
	case model.DiscountFixed:
	default:
		return nil, invalid("discountType", "must be percent or fixed")
	}
	if err := checkAmount("discount", discount); err != nil {
		return nil, err
	}
	if discount == 0 {
		return nil, invalid("discount", "must be positive")
	}

	v := &model.Voucher{
		Code:         code,
		Discount:     discount,
		DiscountType: discountType,
		IsActive:     true,
	}
	if err := s.repo.CreateVoucher(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ApplyVoucher возвращает активный ваучер по коду. Отсутствующий и неактивный ваучер неразличимы.
func (s *Service) ApplyVoucher(ctx context.Context, code string) (*model.Voucher, error) {
	code = validation.NormalizeVoucherCode(code)
	if code == "" {
		return nil, ErrInvalidVoucher
	}

	v, err := s.repo.GetVoucher(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidVoucher
		}
		return nil, err
	}
	if !v.IsActive {
		return nil, ErrInvalidVoucher
	}
	return v, nil
}
