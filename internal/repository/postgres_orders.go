package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/crunchy-waffle/internal/model"
)

const orderColumns = `id, username, items, total, wallet_deducted, cash_paid, transaction_id, points_earned, status, created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                               model.Order
		items                           []byte
		total, walletDeducted, cashPaid int64
		status                          string
	)
	err := row.Scan(&o.ID, &o.Username, &items, &total, &walletDeducted, &cashPaid,
		&o.TransactionID, &o.PointsEarned, &status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Items = items
	o.Total = fromCents(total)
	o.WalletDeducted = fromCents(walletDeducted)
	o.CashPaid = fromCents(cashPaid)
	o.Status = model.OrderStatus(status)
	return &o, nil
}

// CreateOrder сохраняет новый заказ в статусе Pending и заполняет его ID и время создания.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	items := []byte(o.Items)
	if len(items) == 0 {
		items = []byte("[]")
	}

	o.ID = uuid.NewString()
	o.Status = model.OrderStatusPending

	err := r.pool.QueryRow(ctx,
		`INSERT INTO orders (id, username, items, total, wallet_deducted, cash_paid, transaction_id, points_earned, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		o.ID, o.Username, items, toCents(o.Total), toCents(o.WalletDeducted), toCents(o.CashPaid),
		o.TransactionID, o.PointsEarned, string(o.Status),
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// ApproveOrder переводит заказ из Pending в Approved и в той же транзакции
// списывает walletDeducted с кошелька владельца и начисляет pointsEarned.
// Смена статуса выполняется условным UPDATE, поэтому параллельные вызовы
// применяют эффект ровно один раз.
func (r *PostgresRepository) ApproveOrder(ctx context.Context, id string) (*model.Order, error) {
	var approved *model.Order
	err := r.withRetry(ctx, func() error {
		o, err := r.approveOrderTx(ctx, id)
		if err != nil {
			return err
		}
		approved = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (r *PostgresRepository) approveOrderTx(ctx context.Context, id string) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := scanOrder(tx.QueryRow(ctx,
		`UPDATE orders SET status = $3
		 WHERE id = $1 AND status = $2
		 RETURNING `+orderColumns,
		id, string(model.OrderStatusPending), string(model.OrderStatusApproved),
	))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update order status: %w", err)
		}

		var exists bool
		err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check order: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: order %s", ErrAlreadyProcessed, id)
	}

	cmdTag, err := tx.Exec(ctx,
		`UPDATE users
		 SET wallet_balance = wallet_balance - $2,
		     loyalty_points = loyalty_points + $3
		 WHERE username = $1`,
		o.Username, toCents(o.WalletDeducted), o.PointsEarned,
	)
	if err != nil {
		if isOutOfRange(err) {
			return nil, fmt.Errorf("%w: wallet of %s", ErrOutOfRange, o.Username)
		}
		return nil, fmt.Errorf("apply order to wallet: %w", err)
	}
	if cmdTag.RowsAffected() != 1 {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, o.Username)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return o, nil
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, username string) ([]model.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE username = $1 ORDER BY created_at DESC`,
		username,
	)
}

// GetAllOrders возвращает все заказы, новые первыми.
func (r *PostgresRepository) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *PostgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// CreateVoucher сохраняет новый ваучер.
func (r *PostgresRepository) CreateVoucher(ctx context.Context, v *model.Voucher) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vouchers (code, discount, discount_type, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		v.Code, toCents(v.Discount), string(v.DiscountType), v.IsActive,
	).Scan(&v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: voucher %s", ErrDuplicateKey, v.Code)
		}
		return fmt.Errorf("insert voucher: %w", err)
	}
	return nil
}

// GetVoucher возвращает ваучер по коду независимо от его активности.
func (r *PostgresRepository) GetVoucher(ctx context.Context, code string) (*model.Voucher, error) {
	var (
		v            model.Voucher
		discount     int64
		discountType string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT code, discount, discount_type, is_active, created_at FROM vouchers WHERE code = $1`,
		code,
	).Scan(&v.Code, &discount, &discountType, &v.IsActive, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	v.Discount = fromCents(discount)
	v.DiscountType = model.DiscountType(discountType)
	return &v, nil
}
