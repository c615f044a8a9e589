package app

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bookwish/internal/catalog"
	"bookwish/internal/domain"
	"bookwish/internal/logger"
	"bookwish/internal/notify"
	"bookwish/internal/policy"
	"bookwish/internal/store"
	"bookwish/internal/worker"
)

type orderRecorder struct {
	mu     sync.Mutex
	orders []DownloadOrder
}

func (r *orderRecorder) handler() worker.JobHandlerFunc {
	return func(ctx context.Context, job worker.Job, log *slog.Logger) error {
		order, ok := job.Payload.(DownloadOrder)
		if !ok {
			return worker.ErrUnknownJobType
		}
		r.mu.Lock()
		r.orders = append(r.orders, order)
		r.mu.Unlock()
		return nil
	}
}

func (r *orderRecorder) all() []DownloadOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DownloadOrder(nil), r.orders...)
}

type deliveryRecorder struct {
	mu        sync.Mutex
	snapshots []domain.RequestSnapshot
}

func (r *deliveryRecorder) Send(ctx context.Context, n *domain.Notification, snap domain.RequestSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap)
	return nil
}

func (r *deliveryRecorder) all() []domain.RequestSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RequestSnapshot(nil), r.snapshots...)
}

type testEnv struct {
	db         *store.DB
	provider   *catalog.MockProvider
	quality    *policy.QualityConfig
	svc        *RequestService
	pool       *worker.Pool
	downloads  *orderRecorder
	deliveries *deliveryRecorder
}

func setupTestEnv(t *testing.T, books ...domain.Book) *testEnv {
	t.Helper()

	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.New(logger.Config{Level: "error", Format: "text"})
	downloads := &orderRecorder{}
	deliveries := &deliveryRecorder{}

	dispatcher := worker.NewDispatcher()
	dispatcher.Register(domain.JobTypeDownload, downloads.handler())
	dispatcher.Register(domain.JobTypeNotify, notify.NewJobHandler(deliveries))
	pool := worker.NewPool(dispatcher, log, 1, 32)
	pool.Start()

	provider := catalog.NewMockProvider(books...)
	quality := policy.NewQualityConfig()
	fanout := notify.NewFanout(db, pool, log)
	svc := NewRequestService(db, provider, quality, fanout, pool, log)

	return &testEnv{
		db:         db,
		provider:   provider,
		quality:    quality,
		svc:        svc,
		pool:       pool,
		downloads:  downloads,
		deliveries: deliveries,
	}
}

func (e *testEnv) user(t *testing.T, username string, group domain.Group) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:     username,
		PasswordHash: "x",
		Group:        group,
		CreatedAt:    time.Now(),
	}
	if err := e.db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func (e *testEnv) subscribe(t *testing.T, name string, event domain.EventKind) {
	t.Helper()
	n := &domain.Notification{
		ID:        name,
		Name:      name,
		Event:     event,
		URL:       "https://example.com/" + name,
		CreatedAt: time.Now(),
	}
	if err := e.db.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}
}

func mistborn() domain.Book {
	return domain.Book{
		ASIN:      "B001",
		Title:     "Mistborn",
		Authors:   domain.StringSlice{"Brandon Sanderson"},
		Narrators: domain.StringSlice{"Michael Kramer"},
	}
}

func TestSearchAnnotatesRequested(t *testing.T) {
	env := setupTestEnv(t, mistborn(), domain.Book{ASIN: "B002", Title: "Elantris"})
	defer env.pool.Stop()
	ctx := context.Background()
	alice := env.user(t, "alice", domain.GroupTrusted)

	if err := env.svc.Submit(ctx, alice, "B001"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	page, err := env.svc.Search(ctx, alice, "sanderson", 0, 20, "us")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(page.Results))
	}
	for _, b := range page.Results {
		want := b.ASIN == "B001"
		if b.AlreadyRequested != want {
			t.Errorf("AlreadyRequested for %s = %v, want %v", b.ASIN, b.AlreadyRequested, want)
		}
	}
}

func TestSearchInvalidRegionSkipsCatalog(t *testing.T) {
	env := setupTestEnv(t, mistborn())
	defer env.pool.Stop()
	alice := env.user(t, "alice", domain.GroupTrusted)

	_, err := env.svc.Search(context.Background(), alice, "sanderson", 0, 20, "atlantis")
	if !errors.Is(err, catalog.ErrInvalidRegion) {
		t.Fatalf("Expected ErrInvalidRegion, got %v", err)
	}
	if env.provider.SearchCalls() != 0 {
		t.Errorf("Expected no catalog call for invalid region, got %d", env.provider.SearchCalls())
	}
}

func TestSearchEmptyQuerySkipsCatalog(t *testing.T) {
	env := setupTestEnv(t, mistborn())
	defer env.pool.Stop()
	alice := env.user(t, "alice", domain.GroupTrusted)

	page, err := env.svc.Search(context.Background(), alice, "", 0, 20, "us")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page.Results) != 0 {
		t.Errorf("Expected no results for empty query, got %d", len(page.Results))
	}
	if env.provider.SearchCalls() != 0 {
		t.Errorf("Expected no catalog call for empty query, got %d", env.provider.SearchCalls())
	}
}

func TestSubmitUnknownBookNoSideEffects(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.user(t, "alice", domain.GroupTrusted)

	err := env.svc.Submit(context.Background(), alice, "B404")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	env.pool.Stop()

	reqs, _ := env.db.ListRequests(context.Background(), false)
	if len(reqs) != 0 {
		t.Errorf("Expected no rows after failed lookup, got %d", len(reqs))
	}
	if len(env.deliveries.all()) != 0 {
		t.Errorf("Expected no notifications after failed lookup, got %d", len(env.deliveries.all()))
	}
}

func TestSubmitIdempotent(t *testing.T) {
	env := setupTestEnv(t, mistborn())
	defer env.pool.Stop()
	ctx := context.Background()
	alice := env.user(t, "alice", domain.GroupTrusted)

	if err := env.svc.Submit(ctx, alice, "B001"); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}
	if err := env.svc.Submit(ctx, alice, "B001"); err != nil {
		t.Fatalf("Repeat submit must be a silent no-op, got %v", err)
	}

	reqs, _ := env.db.ListRequests(ctx, false)
	if len(reqs) != 1 {
		t.Errorf("Expected 1 row after repeat submit, got %d", len(reqs))
	}
}

func TestSubmitAutoDownloadGating(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		group       domain.Group
		wantJobs    int
		wantStarted bool
	}{
		{"enabled trusted starts", true, domain.GroupTrusted, 1, true},
		{"enabled admin starts", true, domain.GroupAdmin, 1, true},
		{"enabled guest queues", true, domain.GroupGuest, 1, false},
		{"disabled trusted no job", false, domain.GroupTrusted, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t, mistborn())
			ctx := context.Background()
			user := env.user(t, "alice", tt.group)

			if err := env.quality.SetAutoDownload(ctx, env.db, tt.enabled); err != nil {
				t.Fatalf("SetAutoDownload failed: %v", err)
			}
			if err := env.svc.Submit(ctx, user, "B001"); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			env.pool.Stop()

			orders := env.downloads.all()
			if len(orders) != tt.wantJobs {
				t.Fatalf("Expected %d download orders, got %d", tt.wantJobs, len(orders))
			}
			if tt.wantJobs > 0 && orders[0].StartImmediately != tt.wantStarted {
				t.Errorf("StartImmediately = %v, want %v", orders[0].StartImmediately, tt.wantStarted)
			}
		})
	}
}

func TestSubmitNotifiesSubscribers(t *testing.T) {
	env := setupTestEnv(t, mistborn())
	ctx := context.Background()
	alice := env.user(t, "alice", domain.GroupTrusted)
	env.subscribe(t, "hook-a", domain.EventOnNewRequest)
	env.subscribe(t, "hook-b", domain.EventOnNewRequest)
	env.subscribe(t, "other", domain.EventOnFailedRequest)

	if err := env.svc.Submit(ctx, alice, "B001"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	env.pool.Stop()

	snaps := env.deliveries.all()
	if len(snaps) != 2 {
		t.Fatalf("Expected 2 deliveries for on_new_request subscribers, got %d", len(snaps))
	}
	for _, snap := range snaps {
		if snap.Title != "Mistborn" || snap.Requester != "alice" {
			t.Errorf("Unexpected snapshot: %+v", snap)
		}
		if snap.Manual {
			t.Error("Catalog-backed request must not be flagged manual")
		}
	}
}

func TestSubmitDeliversAfterCallerCancel(t *testing.T) {
	env := setupTestEnv(t, mistborn())
	alice := env.user(t, "alice", domain.GroupTrusted)
	env.subscribe(t, "hook", domain.EventOnNewRequest)

	ctx, cancel := context.WithCancel(context.Background())
	if err := env.svc.Submit(ctx, alice, "B001"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	// Caller hangs up right after the commit. The queued delivery must
	// still run because workers hold their own context.
	cancel()
	env.pool.Stop()

	if len(env.deliveries.all()) != 1 {
		t.Errorf("Expected delivery to survive caller cancellation, got %d", len(env.deliveries.all()))
	}
}

func TestSubmitManualParsesLists(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.GroupGuest)
	env.subscribe(t, "hook", domain.EventOnNewRequest)

	req, err := env.svc.SubmitManual(ctx, alice, ManualFields{
		Title:  "Obscure Book",
		Author: "A, B",
	})
	if err != nil {
		t.Fatalf("SubmitManual failed: %v", err)
	}
	if len(req.Authors) != 2 || req.Authors[0] != "A" || req.Authors[1] != "B" {
		t.Errorf("Expected authors [A B], got %v", req.Authors)
	}
	if len(req.Narrators) != 0 {
		t.Errorf("Expected empty narrators, got %v", req.Narrators)
	}
	env.pool.Stop()

	snaps := env.deliveries.all()
	if len(snaps) != 1 {
		t.Fatalf("Expected 1 delivery, got %d", len(snaps))
	}
	if !snaps[0].Manual {
		t.Error("Expected manual flag on the snapshot")
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	env := setupTestEnv(t, mistborn())
	defer env.pool.Stop()
	ctx := context.Background()
	alice := env.user(t, "alice", domain.GroupTrusted)

	if err := env.svc.Submit(ctx, alice, "B001"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := env.svc.Delete(ctx, alice, "B001", false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden for non-admin, got %v", err)
	}
	reqs, _ := env.db.ListRequests(ctx, false)
	if len(reqs) != 1 {
		t.Errorf("Expected row untouched after forbidden delete, got %d", len(reqs))
	}
}

func TestDeleteRemovesAllUsersRows(t *testing.T) {
	env := setupTestEnv(t, mistborn())
	defer env.pool.Stop()
	ctx := context.Background()
	admin := env.user(t, "admin", domain.GroupAdmin)
	bob := env.user(t, "bob", domain.GroupGuest)

	if err := env.svc.Submit(ctx, admin, "B001"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.svc.Submit(ctx, bob, "B001"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	remaining, err := env.svc.Delete(ctx, admin, "B001", false)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected no rows left for any user, got %d", len(remaining))
	}
}
