package purchase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/clock"
	appcontext "retailcore/internal/core/context"
	"retailcore/internal/core/id"
	"retailcore/internal/core/numerator"
	"retailcore/internal/core/security"
	"retailcore/internal/core/types"
	"retailcore/internal/domain"
)

// --- test doubles ---

type mockTxManager struct{}

func (mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// mockRepo is an in-memory Repository. GetByID hands out deep copies so
// the service mutates a snapshot, like a row read from the database.
type mockRepo struct {
	entries map[id.ID]*Entry
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: make(map[id.ID]*Entry)}
}

func cloneEntry(e *Entry) *Entry {
	c := *e
	c.Lines = append([]Line(nil), e.Lines...)
	c.Payments = append([]Payment(nil), e.Payments...)
	c.events = nil
	return &c
}

func (r *mockRepo) Create(_ context.Context, e *Entry) error {
	r.entries[e.ID] = cloneEntry(e)
	return nil
}

func (r *mockRepo) GetByID(_ context.Context, tenantID, entryID id.ID) (*Entry, error) {
	e, ok := r.entries[entryID]
	if !ok || !e.BelongsTo(tenantID) {
		return nil, apperror.NewNotFound("purchase entry", entryID)
	}
	return cloneEntry(e), nil
}

func (r *mockRepo) Update(_ context.Context, e *Entry) error {
	stored, ok := r.entries[e.ID]
	if !ok {
		return apperror.NewNotFound("purchase entry", e.ID)
	}
	if stored.Version != e.Version {
		return apperror.NewConcurrentModification("purchase entry", e.ID)
	}
	e.Version++
	r.entries[e.ID] = cloneEntry(e)
	return nil
}

func (r *mockRepo) ExistsByCode(_ context.Context, tenantID id.ID, code string) (bool, error) {
	for _, e := range r.entries {
		if e.BelongsTo(tenantID) && strings.EqualFold(e.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockRepo) List(_ context.Context, tenantID id.ID, f ListFilter) (domain.ListResult[*Entry], error) {
	var items []*Entry
	for _, e := range r.entries {
		if e.BelongsTo(tenantID) {
			items = append(items, cloneEntry(e))
		}
	}
	return domain.ListResult[*Entry]{Items: items, TotalCount: int64(len(items)), Limit: f.Limit}, nil
}

type capturePublisher struct {
	events []Event
}

func (p *capturePublisher) Publish(_ context.Context, events ...Event) error {
	p.events = append(p.events, events...)
	return nil
}

type testEnv struct {
	svc       *Service
	repo      *mockRepo
	publisher *capturePublisher
	tenantID  id.ID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newMockRepo()
	publisher := &capturePublisher{}
	gen := &numerator.MockGenerator{
		NextCodeFunc: func(context.Context, id.ID, numerator.Config, *numerator.Options, time.Time) (string, error) {
			return "PE-2026-00001", nil
		},
	}
	svc := NewService(repo, mockTxManager{}, gen, clock.At(testNow), nil, publisher, nil)
	return &testEnv{svc: svc, repo: repo, publisher: publisher, tenantID: id.New()}
}

func (env *testEnv) create(t *testing.T, req CreateRequest) *Entry {
	t.Helper()
	e, err := env.svc.Create(context.Background(), env.tenantID, req)
	require.NoError(t, err)
	return e
}

// --- tests ---

func TestServiceCreate_GeneratesCode(t *testing.T) {
	env := newTestEnv(t)

	e := env.create(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	assert.Equal(t, "PE-2026-00001", e.Code)
	assert.Equal(t, env.tenantID, e.CompanyID)
	assert.Equal(t, 1, e.Version)
	assertMoney(t, "550", e.GrandTotal)

	require.Len(t, env.publisher.events, 1)
	assert.Equal(t, EventCreated, env.publisher.events[0].Type)
}

func TestServiceCreate_ExplicitCodeDuplicate(t *testing.T) {
	env := newTestEnv(t)

	req := testCreateRequest(lineInput(1, "10", "0", "0"))
	req.Code = "PE-CUSTOM-1"
	env.create(t, req)

	dup := testCreateRequest(lineInput(1, "10", "0", "0"))
	dup.Code = "pe-custom-1" // case-insensitive collision
	_, err := env.svc.Create(context.Background(), env.tenantID, dup)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestServiceCreate_InitialPayment(t *testing.T) {
	env := newTestEnv(t)

	req := testCreateRequest(lineInput(10, "50", "0", "10"))
	req.InitialPayment = &PaymentRequest{Method: MethodBankTransfer, Amount: types.MustMoney("200")}

	e := env.create(t, req)
	assertMoney(t, "200", e.AmountPaid)
	assertMoney(t, "350", e.AmountDue)
	require.Len(t, env.publisher.events, 2)
	assert.Equal(t, EventPaymentRecorded, env.publisher.events[1].Type)
}

func TestServicePay_StaleVersionRejected(t *testing.T) {
	env := newTestEnv(t)
	e := env.create(t, testCreateRequest(lineInput(2, "50", "0", "0"))) // due 100

	// Two callers read version 1. Each asks for 80 against the 100 due.
	first, err := env.svc.Pay(context.Background(), env.tenantID, e.ID, e.Version,
		PaymentRequest{Method: MethodCash, Amount: types.MustMoney("80")})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Version)
	assertMoney(t, "20", first.AmountDue)

	_, err = env.svc.Pay(context.Background(), env.tenantID, e.ID, e.Version,
		PaymentRequest{Method: MethodCash, Amount: types.MustMoney("80")})
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))

	// Exactly one payment landed.
	stored, err := env.svc.GetByID(context.Background(), env.tenantID, e.ID)
	require.NoError(t, err)
	require.Len(t, stored.Payments, 1)
	assertMoney(t, "80", stored.AmountPaid)
}

func TestServicePay_RetryAfterRereadRejectedAsOverpayment(t *testing.T) {
	env := newTestEnv(t)
	e := env.create(t, testCreateRequest(lineInput(2, "50", "0", "0"))) // due 100

	first, err := env.svc.Pay(context.Background(), env.tenantID, e.ID, e.Version,
		PaymentRequest{Method: MethodCash, Amount: types.MustMoney("80")})
	require.NoError(t, err)

	// The stale caller re-reads (version 2, due 20) and retries 80.
	_, err = env.svc.Pay(context.Background(), env.tenantID, e.ID, first.Version,
		PaymentRequest{Method: MethodCash, Amount: types.MustMoney("80")})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpayment))
}

func TestServiceReceive_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	e := env.create(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	e2, err := env.svc.Receive(context.Background(), env.tenantID, e.ID, e.Version, ReceiveBatch{
		Items: []ReceiptItem{{LineID: e.Lines[0].LineID, Qty: 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyReceived, e2.Status())
	assert.Equal(t, 2, e2.Version)

	e3, err := env.svc.Receive(context.Background(), env.tenantID, e2.ID, e2.Version, ReceiveBatch{
		Items: []ReceiptItem{{LineID: e.Lines[0].LineID, Qty: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, e3.Status())

	last := env.publisher.events[len(env.publisher.events)-1]
	assert.Equal(t, EventReceived, last.Type)
	assert.Equal(t, true, last.Payload["fullyReceived"])
}

func TestServiceReceive_FailedBatchNotPersisted(t *testing.T) {
	env := newTestEnv(t)
	e := env.create(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	_, err := env.svc.Receive(context.Background(), env.tenantID, e.ID, e.Version, ReceiveBatch{
		Items: []ReceiptItem{{LineID: e.Lines[0].LineID, Qty: 11}},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverReceipt))

	stored, err := env.svc.GetByID(context.Background(), env.tenantID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Lines[0].QtyReceived.Int64())
	assert.Equal(t, 1, stored.Version)
}

func TestServiceConfirm(t *testing.T) {
	env := newTestEnv(t)
	req := testCreateRequest(lineInput(1, "10", "0", "0"))
	req.Draft = true
	e := env.create(t, req)
	require.Equal(t, StatusDraft, e.Status())

	e2, err := env.svc.Confirm(context.Background(), env.tenantID, e.ID, e.Version)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, e2.Status())
}

func TestServiceCancel_PolicyEnforced(t *testing.T) {
	policies, err := security.NewPolicyEngine()
	require.NoError(t, err)

	env := newTestEnv(t)
	env.svc.policies = policies

	e := env.create(t, testCreateRequest(lineInput(10, "50", "0", "10")))
	e, err = env.svc.Receive(context.Background(), env.tenantID, e.ID, e.Version, ReceiveBatch{
		Items: []ReceiptItem{{LineID: e.Lines[0].LineID, Qty: 1}},
	})
	require.NoError(t, err)

	// A clerk may not cancel once goods were received.
	clerkCtx := appcontext.WithUser(context.Background(), &appcontext.UserContext{
		UserID: id.New().String(), Role: "clerk",
	})
	_, err = env.svc.Cancel(clerkCtx, env.tenantID, e.ID, e.Version)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	// A manager may.
	managerCtx := appcontext.WithUser(context.Background(), &appcontext.UserContext{
		UserID: id.New().String(), Role: "manager",
	})
	cancelled, err := env.svc.Cancel(managerCtx, env.tenantID, e.ID, e.Version)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status())
}

func TestServiceGetByID_TenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	e := env.create(t, testCreateRequest(lineInput(1, "10", "0", "0")))

	_, err := env.svc.GetByID(context.Background(), id.New(), e.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestServiceUpdateLines(t *testing.T) {
	env := newTestEnv(t)
	e := env.create(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	e2, err := env.svc.UpdateLines(context.Background(), env.tenantID, e.ID, e.Version, LineChanges{
		Upsert: []LineUpdate{{LineInput: lineInput(2, "100", "0", "0")}},
	})
	require.NoError(t, err)
	require.Len(t, e2.Lines, 2)
	assertMoney(t, "750", e2.GrandTotal)

	last := env.publisher.events[len(env.publisher.events)-1]
	assert.Equal(t, EventLinesUpdated, last.Type)
}
