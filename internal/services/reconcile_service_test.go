package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/domain"
	"github.com/roseate/go-payments-backend/internal/hotel"
	"github.com/roseate/go-payments-backend/internal/repo"
)

// newServiceDB opens a throwaway SQLite database with the full schema.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// fakePMS records postings and fails the item ids listed in fail.
type fakePMS struct {
	mu       sync.Mutex
	deposits []hotel.DepositPaymentRequest
	folios   []hotel.FolioPaymentRequest
	fail     map[string]bool
}

func (f *fakePMS) PostDepositPayment(_ context.Context, r hotel.DepositPaymentRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deposits = append(f.deposits, r)
	if f.fail[r.DepositPolicyID] {
		return nil, errors.New("posting rejected by pms")
	}
	return json.RawMessage(`{"posted":true}`), nil
}

func (f *fakePMS) PostFolioPayment(_ context.Context, r hotel.FolioPaymentRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folios = append(f.folios, r)
	if f.fail[r.FolioWindowNo] {
		return nil, errors.New("posting rejected by pms")
	}
	return json.RawMessage(`{"posted":true}`), nil
}

func intentJSON(t *testing.T, intent PaymentIntent) string {
	t.Helper()
	b, err := json.Marshal(intent)
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	return string(b)
}

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		name     string
		intent   PaymentIntent
		strategy PostingStrategy
		items    []string
	}{
		{
			"deposit with policies",
			PaymentIntent{Type: "deposit", PolicyIDs: "A, B ,C"},
			StrategyDepositByPolicy, []string{"A", "B", "C"},
		},
		{
			"deposit with policies wins over folios",
			PaymentIntent{Type: "deposit", PolicyIDs: "P1,P2", FolioIDs: "1,2"},
			StrategyDepositByPolicy, []string{"P1", "P2"},
		},
		{
			"adhoc wins over folios",
			PaymentIntent{Description: "Adhoc payment", FolioIDs: "1,2"},
			StrategyAdhocDeposit, []string{""},
		},
		{
			"type match is exact, not case-folded",
			PaymentIntent{Type: "DEPOSIT", PolicyIDs: "P1", FolioIDs: "3"},
			StrategyPerFolio, []string{"3"},
		},
		{
			"deposit without policies falls through to folios",
			PaymentIntent{Type: "deposit", FolioIDs: "1,2"},
			StrategyPerFolio, []string{"1", "2"},
		},
		{
			"folios only",
			PaymentIntent{FolioIDs: "1"},
			StrategyPerFolio, []string{"1"},
		},
		{
			"nothing classifiable",
			PaymentIntent{Type: "upgrade", Description: "Late checkout"},
			StrategyUnknown, nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			strategy, items := classifyIntent(tc.intent)
			if strategy != tc.strategy {
				t.Fatalf("strategy = %s; want %s", strategy, tc.strategy)
			}
			if len(items) != len(tc.items) {
				t.Fatalf("items = %v; want %v", items, tc.items)
			}
			for i := range items {
				if items[i] != tc.items[i] {
					t.Fatalf("items = %v; want %v", items, tc.items)
				}
			}
		})
	}
}

func TestReconcile_PerPolicyFanOutIsolatesFailures(t *testing.T) {
	db := newServiceDB(t)
	pms := &fakePMS{fail: map[string]bool{"B": true}}
	svc := &ReconcileService{DB: db, PMS: pms}

	info := intentJSON(t, PaymentIntent{
		HotelID: "H1", ReservationID: "R1", Amount: 500,
		Type: "deposit", PolicyIDs: "A,B,C",
	})
	res, err := svc.Reconcile(context.Background(), CapturedPayment{
		PaymentID: "pay_1", LinkID: "plink_1", Amount: 500, Currency: "INR",
		NotesInfo: info, RawBody: []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if res.Strategy != StrategyDepositByPolicy {
		t.Fatalf("strategy = %s; want deposit_by_policy", res.Strategy)
	}
	if len(res.Attempts) != 3 {
		t.Fatalf("attempts = %d; want 3", len(res.Attempts))
	}
	// Attempts keep the policy order even though B failed mid-run.
	for i, want := range []string{"A", "B", "C"} {
		if res.Attempts[i].ItemID != want {
			t.Fatalf("attempt %d item = %q; want %q", i, res.Attempts[i].ItemID, want)
		}
	}
	if res.Attempts[0].Status != "success" || res.Attempts[2].Status != "success" {
		t.Fatalf("surrounding attempts should succeed: %+v", res.Attempts)
	}
	if res.Attempts[1].Status != "failed" || !strings.Contains(res.Attempts[1].Error, "rejected") {
		t.Fatalf("attempt B = %+v; want recorded failure", res.Attempts[1])
	}

	// Every posting carried the payment id as its PMS comment and the
	// gateway method code.
	for _, d := range pms.deposits {
		if d.Comment != "pay_1" || d.PaymentMethod != "RZ" {
			t.Fatalf("posting = %+v", d)
		}
	}

	// The aggregate landed on the transaction row.
	txn, err := repo.FindTransactionByPaymentID(context.Background(), db, "pay_1")
	if err != nil {
		t.Fatalf("FindTransactionByPaymentID: %v", err)
	}
	if txn.Status != domain.TransactionStatusCaptured {
		t.Fatalf("status = %q; want captured", txn.Status)
	}
	var stored ReconciliationResult
	if err := json.Unmarshal(txn.DepositAPICalls, &stored); err != nil {
		t.Fatalf("decode aggregate: %v", err)
	}
	if len(stored.Attempts) != 3 {
		t.Fatalf("stored attempts = %d; want 3", len(stored.Attempts))
	}
}

func TestReconcile_AdhocPostsSingleDeposit(t *testing.T) {
	db := newServiceDB(t)
	pms := &fakePMS{}
	svc := &ReconcileService{DB: db, PMS: pms}

	info := intentJSON(t, PaymentIntent{
		HotelID: "H1", ReservationID: "R1", Amount: 120,
		Description: "Adhoc payment",
	})
	res, err := svc.Reconcile(context.Background(), CapturedPayment{
		PaymentID: "pay_2", Amount: 120, Currency: "INR", NotesInfo: info,
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Strategy != StrategyAdhocDeposit || len(res.Attempts) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(pms.deposits) != 1 || pms.deposits[0].DepositPolicyID != "" {
		t.Fatalf("deposits = %+v; want one posting without a policy", pms.deposits)
	}
}

func TestReconcile_FoliosPostPerWindow(t *testing.T) {
	db := newServiceDB(t)
	pms := &fakePMS{}
	svc := &ReconcileService{DB: db, PMS: pms}

	info := intentJSON(t, PaymentIntent{
		HotelID: "H1", ReservationID: "R1", Amount: 200, FolioIDs: "1,2",
	})
	res, err := svc.Reconcile(context.Background(), CapturedPayment{
		PaymentID: "pay_3", Amount: 200, Currency: "INR", NotesInfo: info,
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Strategy != StrategyPerFolio || len(res.Attempts) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if len(pms.folios) != 2 {
		t.Fatalf("folio postings = %d; want 2", len(pms.folios))
	}
	windows := map[string]bool{}
	for _, f := range pms.folios {
		windows[f.FolioWindowNo] = true
	}
	if !windows["1"] || !windows["2"] {
		t.Fatalf("folio windows = %v; want 1 and 2", windows)
	}
}

func TestReconcile_MalformedIntentStillRecordsTransaction(t *testing.T) {
	db := newServiceDB(t)
	pms := &fakePMS{}
	svc := &ReconcileService{DB: db, PMS: pms}

	res, err := svc.Reconcile(context.Background(), CapturedPayment{
		PaymentID: "pay_4", Amount: 99, Currency: "INR", NotesInfo: "{not json",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Strategy != StrategyUnknown || res.Error == "" {
		t.Fatalf("result = %+v; want unknown strategy with error", res)
	}
	if len(pms.deposits)+len(pms.folios) != 0 {
		t.Fatal("no postings should happen for a malformed intent")
	}

	txn, err := repo.FindTransactionByPaymentID(context.Background(), db, "pay_4")
	if err != nil {
		t.Fatalf("FindTransactionByPaymentID: %v", err)
	}
	var stored ReconciliationResult
	if err := json.Unmarshal(txn.DepositAPICalls, &stored); err != nil {
		t.Fatalf("decode aggregate: %v", err)
	}
	if stored.Error == "" {
		t.Fatal("aggregate should record why nothing was posted")
	}
}

func TestReconcile_ReusesExistingTransaction(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	// payment_link.paid landed first and already recorded the payment.
	if err := repo.CreateTransaction(ctx, db, &domain.Transaction{
		PaymentID: "pay_5", Amount: 300, Currency: "INR",
		Status: domain.TransactionStatusSuccess,
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	svc := &ReconcileService{DB: db, PMS: &fakePMS{}}
	info := intentJSON(t, PaymentIntent{
		HotelID: "H1", ReservationID: "R1", Amount: 300, FolioIDs: "1",
	})
	if _, err := svc.Reconcile(ctx, CapturedPayment{
		PaymentID: "pay_5", Amount: 300, Currency: "INR", NotesInfo: info,
	}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	var count int64
	if err := db.Model(&domain.Transaction{}).Where("payment_id = ?", "pay_5").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("transactions = %d; want the existing row reused", count)
	}
	txn, _ := repo.FindTransactionByPaymentID(ctx, db, "pay_5")
	if len(txn.DepositAPICalls) == 0 {
		t.Fatal("aggregate missing on the reused row")
	}
}
