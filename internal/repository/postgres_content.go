package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

// CreateMessage сохраняет обращение покупателя.
func (r *PostgresRepository) CreateMessage(ctx context.Context, m *model.Message) error {
	m.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, username, name, message) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		m.ID, m.Username, m.Name, m.Text,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages возвращает все обращения, новые первыми.
func (r *PostgresRepository) ListMessages(ctx context.Context) ([]model.Message, error) {
	return r.queryMessages(ctx,
		`SELECT id, username, name, message, reply, created_at, replied_at
		 FROM messages ORDER BY created_at DESC`)
}

// ListMessagesByUser возвращает обращения пользователя, новые первыми.
func (r *PostgresRepository) ListMessagesByUser(ctx context.Context, username string) ([]model.Message, error) {
	return r.queryMessages(ctx,
		`SELECT id, username, name, message, reply, created_at, replied_at
		 FROM messages WHERE username = $1 ORDER BY created_at DESC`,
		username,
	)
}

func (r *PostgresRepository) queryMessages(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var res []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Username, &m.Name, &m.Text, &m.Reply, &m.CreatedAt, &m.RepliedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ReplyMessage сохраняет ответ администратора на обращение.
func (r *PostgresRepository) ReplyMessage(ctx context.Context, id, reply string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE messages SET reply = $2, replied_at = $3 WHERE id = $1`,
		id, reply, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: message %s", ErrNotFound, id)
	}
	return nil
}

// ListWaffles возвращает меню в порядке добавления позиций.
func (r *PostgresRepository) ListWaffles(ctx context.Context) ([]model.Waffle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price, description, image, add_ons, created_at FROM waffles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("select waffles: %w", err)
	}
	defer rows.Close()

	var res []model.Waffle
	for rows.Next() {
		var (
			w      model.Waffle
			price  int64
			addOns []byte
		)
		if err := rows.Scan(&w.ID, &w.Name, &price, &w.Description, &w.Image, &addOns, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan waffle: %w", err)
		}
		w.Price = fromCents(price)
		if err := json.Unmarshal(addOns, &w.AddOns); err != nil {
			return nil, fmt.Errorf("decode add-ons of %s: %w", w.ID, err)
		}
		res = append(res, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// CreateWaffle добавляет позицию в меню.
func (r *PostgresRepository) CreateWaffle(ctx context.Context, w *model.Waffle) error {
	addOns, err := marshalAddOns(w.AddOns)
	if err != nil {
		return err
	}

	w.ID = uuid.NewString()
	err = r.pool.QueryRow(ctx,
		`INSERT INTO waffles (id, name, price, description, image, add_ons)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		w.ID, w.Name, toCents(w.Price), w.Description, w.Image, addOns,
	).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert waffle: %w", err)
	}
	return nil
}

// SeedWaffle добавляет позицию только если меню пустое. Возвращает true, если позиция добавлена.
func (r *PostgresRepository) SeedWaffle(ctx context.Context, w *model.Waffle) (bool, error) {
	addOns, err := marshalAddOns(w.AddOns)
	if err != nil {
		return false, err
	}

	id := uuid.NewString()
	cmdTag, err := r.pool.Exec(ctx,
		`INSERT INTO waffles (id, name, price, description, image, add_ons)
		 SELECT $1, $2, $3, $4, $5, $6
		 WHERE NOT EXISTS (SELECT 1 FROM waffles)`,
		id, w.Name, toCents(w.Price), w.Description, w.Image, addOns,
	)
	if err != nil {
		return false, fmt.Errorf("seed waffle: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}
	w.ID = id
	return true, nil
}

// DeleteWaffle удаляет позицию меню. Отсутствие позиции ошибкой не считается.
func (r *PostgresRepository) DeleteWaffle(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM waffles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete waffle: %w", err)
	}
	return nil
}

func marshalAddOns(addOns []model.AddOn) ([]byte, error) {
	if addOns == nil {
		addOns = []model.AddOn{}
	}
	b, err := json.Marshal(addOns)
	if err != nil {
		return nil, fmt.Errorf("encode add-ons: %w", err)
	}
	return b, nil
}

// GetSetting декодирует настройку с ключом key в dst. Возвращает false, если настройка ещё не сохранялась.
func (r *PostgresRepository) GetSetting(ctx context.Context, key string, dst any) (bool, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get setting %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

// PutSetting создаёт или перезаписывает настройку с ключом key.
func (r *PostgresRepository) PutSetting(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}
