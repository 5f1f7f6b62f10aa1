package integration

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/btechtrader/checkout-service/internal/purchase/domain"
	"github.com/btechtrader/checkout-service/internal/purchase/infrastructure/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPurchaseRepository(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") == "" {
		t.Skip("set RUN_INTEGRATION=1 to run container tests")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer env.Teardown(ctx)

	if err := env.Migrate(ctx, "../../internal/purchase/infrastructure/postgres/schema.sql"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, env.PGURL)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewRepository(slog.Default(), pool)

	p := domain.Purchase{
		UserID:      "user-1",
		OrderID:     "order_abc123",
		CourseID:    "course-9",
		CourseTitle: "Advanced Trading",
		PricePaise:  5400,
		Token:       "A1B2C3D4E",
		PurchasedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	stored, created, err := repo.InsertWithOutbox(ctx, p, "purchase.recorded", []byte(`{"orderId":"order_abc123"}`), "")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !created {
		t.Fatal("first insert should create the row")
	}
	if stored.Token != p.Token {
		t.Fatalf("token = %q, want %q", stored.Token, p.Token)
	}

	// Replaying the same (user, order) keeps the original row and token.
	replay := p
	replay.Token = "ZZZZZZZZZ"
	stored, created, err = repo.InsertWithOutbox(ctx, replay, "purchase.recorded", []byte(`{}`), "")
	if err != nil {
		t.Fatalf("replay insert: %v", err)
	}
	if created {
		t.Fatal("replay should not create a second row")
	}
	if stored.Token != p.Token {
		t.Fatalf("replay token = %q, want original %q", stored.Token, p.Token)
	}

	var outboxRows int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM outbox`).Scan(&outboxRows); err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	if outboxRows != 1 {
		t.Fatalf("outbox rows = %d, want 1 (replay must not emit an event)", outboxRows)
	}

	got, err := repo.Get(ctx, "user-1", "order_abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CourseTitle != p.CourseTitle {
		t.Fatalf("course title = %q, want %q", got.CourseTitle, p.CourseTitle)
	}

	if _, err := repo.Get(ctx, "user-1", "missing"); err != domain.ErrNotFound {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}

	list, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list len = %d, want 1", len(list))
	}
}
