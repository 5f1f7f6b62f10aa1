package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/btechtrader/checkout-service/internal/purchase/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists purchases keyed (user_id, order_id), the relational
// form of the purchases/{userId}/{orderId} namespace clients read.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) InsertWithOutbox(ctx context.Context, p domain.Purchase, eventType string, payload []byte, traceparent string) (domain.Purchase, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Purchase{}, false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `INSERT INTO purchases (user_id, order_id, course_id, course_title, price_paise, token, purchased_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id, order_id) DO NOTHING`,
		p.UserID, p.OrderID, p.CourseID, p.CourseTitle, p.PricePaise, p.Token, p.PurchasedAt)
	if err != nil {
		return domain.Purchase{}, false, err
	}

	if ct.RowsAffected() == 0 {
		// Replay: keep the original row and token, emit no event.
		existing, err := r.get(ctx, tx, p.UserID, p.OrderID)
		if err != nil {
			return domain.Purchase{}, false, err
		}
		if err := tx.Commit(ctx); err != nil {
			return domain.Purchase{}, false, err
		}
		return existing, false, nil
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,'pending')`,
		"purchase", p.OrderID, eventType, payload, traceparent)
	if err != nil {
		return domain.Purchase{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Purchase{}, false, err
	}
	return p, true, nil
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) get(ctx context.Context, q queryer, userID, orderID string) (domain.Purchase, error) {
	var p domain.Purchase
	err := q.QueryRow(ctx, `SELECT user_id, order_id, course_id, course_title, price_paise, token, purchased_at
		FROM purchases WHERE user_id=$1 AND order_id=$2`, userID, orderID).
		Scan(&p.UserID, &p.OrderID, &p.CourseID, &p.CourseTitle, &p.PricePaise, &p.Token, &p.PurchasedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Purchase{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Purchase{}, err
	}
	return p, nil
}

func (r *Repository) Get(ctx context.Context, userID, orderID string) (domain.Purchase, error) {
	return r.get(ctx, r.pool, userID, orderID)
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, order_id, course_id, course_title, price_paise, token, purchased_at
		FROM purchases WHERE user_id=$1 ORDER BY purchased_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.UserID, &p.OrderID, &p.CourseID, &p.CourseTitle, &p.PricePaise, &p.Token, &p.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
