package service

import (
	"context"
	"strings"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
	"github.com/mmeshcher/crunchy-waffle/internal/repository"
)

// ListWaffles возвращает меню.
func (s *Service) ListWaffles(ctx context.Context) ([]model.Waffle, error) {
	waffles, err := s.repo.ListWaffles(ctx)
	if err != nil {
		return nil, err
	}
	if waffles == nil {
		waffles = []model.Waffle{}
	}
	return waffles, nil
}

// AddWaffle добавляет позицию в меню и возвращает её с присвоенным идентификатором.
func (s *Service) AddWaffle(ctx context.Context, w model.Waffle) (*model.Waffle, error) {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return nil, invalid("name", "required")
	}
	if err := checkAmount("price", w.Price); err != nil {
		return nil, err
	}
	for _, a := range w.AddOns {
		if strings.TrimSpace(a.Name) == "" {
			return nil, invalid("addOns", "add-on name required")
		}
		if err := checkAmount("addOns", a.Price); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreateWaffle(ctx, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWaffle удаляет позицию меню. Удаление отсутствующей позиции не является ошибкой.
func (s *Service) DeleteWaffle(ctx context.Context, id string) error {
	return s.repo.DeleteWaffle(ctx, id)
}

// SeedMenu заполняет пустое меню позицией по умолчанию.
func (s *Service) SeedMenu(ctx context.Context) (bool, error) {
	w := repository.DefaultWaffle()
	return s.repo.SeedWaffle(ctx, &w)
}

// GetAbout возвращает страницу «О нас» или пустую структуру.
func (s *Service) GetAbout(ctx context.Context) (*model.About, error) {
	var about model.About
	if _, err := s.repo.GetSetting(ctx, model.SettingAbout, &about); err != nil {
		return nil, err
	}
	return &about, nil
}

// UpdateAbout перезаписывает непустые поля страницы «О нас».
func (s *Service) UpdateAbout(ctx context.Context, patch model.About) (*model.About, error) {
	about, err := s.GetAbout(ctx)
	if err != nil {
		return nil, err
	}
	overlay(&about.Title, patch.Title)
	overlay(&about.Content, patch.Content)
	overlay(&about.Image, patch.Image)

	if err := s.repo.PutSetting(ctx, model.SettingAbout, about); err != nil {
		return nil, err
	}
	return about, nil
}

// GetLogo возвращает настройки логотипа или значения по умолчанию.
func (s *Service) GetLogo(ctx context.Context) (*model.LogoSettings, error) {
	logo := model.DefaultLogo()
	if _, err := s.repo.GetSetting(ctx, model.SettingLogo, &logo); err != nil {
		return nil, err
	}
	return &logo, nil
}

// LogoPatch описывает изменение настроек логотипа; nil-поля не изменяются, пустая строка очищает поле.
type LogoPatch struct {
	Width *string
	X     *string
	Y     *string
}

// SaveLogo применяет изменения к настройкам логотипа.
func (s *Service) SaveLogo(ctx context.Context, patch LogoPatch) (*model.LogoSettings, error) {
	logo, err := s.GetLogo(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst *string
		v   *string
	}{
		{&logo.Width, patch.Width},
		{&logo.X, patch.X},
		{&logo.Y, patch.Y},
	} {
		if f.v != nil {
			*f.dst = *f.v
		}
	}

	if err := s.repo.PutSetting(ctx, model.SettingLogo, logo); err != nil {
		return nil, err
	}
	return logo, nil
}

// OfferPatch описывает изменение баннера; nil-поля не изменяются.
type OfferPatch struct {
	Text     *string
	IsActive *bool
}

// GetOffer возвращает рекламный баннер.
func (s *Service) GetOffer(ctx context.Context) (*model.Offer, error) {
	var offer model.Offer
	if _, err := s.repo.GetSetting(ctx, model.SettingOffer, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// UpdateOffer применяет изменения к рекламному баннеру.
func (s *Service) UpdateOffer(ctx context.Context, patch OfferPatch) (*model.Offer, error) {
	offer, err := s.GetOffer(ctx)
	if err != nil {
		return nil, err
	}
	if patch.Text != nil {
		offer.Text = *patch.Text
	}
	if patch.IsActive != nil {
		offer.IsActive = *patch.IsActive
	}

	if err := s.repo.PutSetting(ctx, model.SettingOffer, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// GetQR возвращает настройки QR-кода оплаты.
func (s *Service) GetQR(ctx context.Context) (*model.QRSettings, error) {
	var qr model.QRSettings
	if _, err := s.repo.GetSetting(ctx, model.SettingQR, &qr); err != nil {
		return nil, err
	}
	return &qr, nil
}

// SaveQR сохраняет ссылку на QR-код оплаты.
func (s *Service) SaveQR(ctx context.Context, qrURL string) (*model.QRSettings, error) {
	qrURL = strings.TrimSpace(qrURL)
	if qrURL == "" {
		return nil, invalid("qrUrl", "required")
	}

	qr := &model.QRSettings{QRURL: qrURL}
	if err := s.repo.PutSetting(ctx, model.SettingQR, qr); err != nil {
		return nil, err
	}
	return qr, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
