package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickpack-service/internal/models"
	"pickpack-service/internal/picking"
	"pickpack-service/internal/util"
)

// Mock order source
type mockOrderSource struct {
	orders []models.Order
	err    error
	runs   []*models.PickRun
}

func (m *mockOrderSource) GetOpenOrders(ctx context.Context, batchID string) ([]models.Order, error) {
	return m.orders, m.err
}

func (m *mockOrderSource) CreatePickRun(ctx context.Context, run *models.PickRun) error {
	m.runs = append(m.runs, run)
	return nil
}

// Mock session locker
type mockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	fails bool
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: map[string]string{}}
}

func (m *mockLocker) AcquireSessionLock(ctx context.Context, picker, token string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails {
		return false, nil
	}
	if _, taken := m.held[picker]; taken {
		return false, nil
	}
	m.held[picker] = token
	return true, nil
}

func (m *mockLocker) ReleaseSessionLock(ctx context.Context, picker, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[picker] == token {
		delete(m.held, picker)
	}
	return nil
}

// Mock event sink
type mockEventSink struct {
	started  []*models.SessionStartedEvent
	shortage []*models.ShortageReportedEvent
	finished []*models.SessionFinishedEvent
}

func (m *mockEventSink) PublishSessionStarted(ctx context.Context, e *models.SessionStartedEvent) error {
	m.started = append(m.started, e)
	return nil
}

func (m *mockEventSink) PublishShortageReported(ctx context.Context, e *models.ShortageReportedEvent) error {
	m.shortage = append(m.shortage, e)
	return nil
}

func (m *mockEventSink) PublishSessionFinished(ctx context.Context, e *models.SessionFinishedEvent) error {
	m.finished = append(m.finished, e)
	return nil
}

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func batchOrders() []models.Order {
	return []models.Order{
		{ID: 1, BatchID: "batch-1", ClientRef: "cafe-nord", Lines: []models.OrderLine{
			{OrderID: 1, ProductID: 100, RequestedQty: qty("5"), Unit: "kg"},
		}},
		{ID: 2, BatchID: "batch-1", ClientRef: "bistro-sud", Lines: []models.OrderLine{
			{OrderID: 2, ProductID: 100, RequestedQty: qty("3"), Unit: "kg"},
		}},
	}
}

func newTestService(orders []models.Order) (*SessionService, *mockOrderSource, *mockLocker, *mockEventSink) {
	src := &mockOrderSource{orders: orders}
	locks := newMockLocker()
	sink := &mockEventSink{}
	svc := &SessionService{
		orders:         src,
		locks:          locks,
		eventPublisher: sink,
		registry:       newSessionRegistry(),
		lockTTL:        time.Minute,
		logger:         util.GetLogger(),
	}
	return svc, src, locks, sink
}

func TestStartSession(t *testing.T) {
	svc, _, locks, sink := newTestService(batchOrders())
	ctx := context.Background()

	view, err := svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-1"})
	require.NoError(t, err)
	defer svc.AbandonSession(ctx, "anna")

	assert.Equal(t, "batch-1", view.BatchID)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].TotalQty.Equal(qty("8")))
	assert.Len(t, sink.started, 1)
	assert.Len(t, locks.held, 1)
}

func TestStartSessionAlreadyActive(t *testing.T) {
	svc, _, _, _ := newTestService(batchOrders())
	ctx := context.Background()

	_, err := svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-1"})
	require.NoError(t, err)
	defer svc.AbandonSession(ctx, "anna")

	_, err = svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-2"})
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestStartSessionEmptyBatch(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	ctx := context.Background()

	view, err := svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-empty"})
	require.NoError(t, err)
	defer svc.AbandonSession(ctx, "anna")

	// nothing to pick is a benign empty result, not an error
	assert.Empty(t, view.Items)
}

func TestReportShortagePublishesEvent(t *testing.T) {
	svc, _, _, sink := newTestService(batchOrders())
	ctx := context.Background()

	_, err := svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-1"})
	require.NoError(t, err)
	defer svc.AbandonSession(ctx, "anna")

	require.NoError(t, svc.ReportShortage(ctx, "anna", 100, qty("6")))

	require.Len(t, sink.shortage, 1)
	assert.Equal(t, int64(100), sink.shortage[0].ProductID)
	assert.True(t, sink.shortage[0].RequestedQty.Equal(qty("8")))
	assert.True(t, sink.shortage[0].ActualQty.Equal(qty("6")))
}

func TestReportShortageInvalidQuantity(t *testing.T) {
	svc, _, _, sink := newTestService(batchOrders())
	ctx := context.Background()

	_, err := svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-1"})
	require.NoError(t, err)
	defer svc.AbandonSession(ctx, "anna")

	err = svc.ReportShortage(ctx, "anna", 100, qty("-2"))
	assert.ErrorIs(t, err, picking.ErrInvalidQuantity)
	assert.Empty(t, sink.shortage)
}

func TestPackingViewRecomputes(t *testing.T) {
	svc, _, _, _ := newTestService(batchOrders())
	ctx := context.Background()

	_, err := svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-1"})
	require.NoError(t, err)
	defer svc.AbandonSession(ctx, "anna")

	require.NoError(t, svc.ReportShortage(ctx, "anna", 100, qty("6")))

	manifest, err := svc.PackingView(ctx, "anna")
	require.NoError(t, err)
	require.Len(t, manifest.Lines, 2)
	assert.True(t, manifest.Lines[0].AllocatedQty.Equal(qty("5")))
	assert.True(t, manifest.Lines[1].AllocatedQty.Equal(qty("1")))
	assert.True(t, manifest.Lines[1].HasShortage)

	// revising the report after the first view must change the next view
	require.NoError(t, svc.ReportDone(ctx, "anna", 100))

	manifest, err = svc.PackingView(ctx, "anna")
	require.NoError(t, err)
	assert.True(t, manifest.Lines[1].AllocatedQty.Equal(qty("3")))
	assert.False(t, manifest.Lines[1].HasShortage)
}

func TestFinishSession(t *testing.T) {
	svc, src, locks, sink := newTestService(batchOrders())
	ctx := context.Background()

	_, err := svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-1"})
	require.NoError(t, err)

	require.NoError(t, svc.ReportShortage(ctx, "anna", 100, qty("0")))

	manifest, err := svc.FinishSession(ctx, "anna")
	require.NoError(t, err)
	require.Len(t, manifest.Lines, 2)
	for _, line := range manifest.Lines {
		assert.True(t, line.AllocatedQty.IsZero())
		assert.True(t, line.HasShortage)
	}

	// manifest published, run recorded, lock released, session gone
	require.Len(t, sink.finished, 1)
	assert.Len(t, sink.finished[0].Lines, 2)
	require.Len(t, src.runs, 1)
	assert.Equal(t, 1, src.runs[0].ShortageCount)
	assert.Empty(t, locks.held)

	_, err = svc.PackingView(ctx, "anna")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	// the picker can start a new session afterwards
	_, err = svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-1"})
	assert.NoError(t, err)
	svc.AbandonSession(ctx, "anna")
}

func TestNoActiveSession(t *testing.T) {
	svc, _, _, _ := newTestService(batchOrders())
	ctx := context.Background()

	assert.ErrorIs(t, svc.ReportDone(ctx, "ghost", 100), ErrNoActiveSession)
	assert.ErrorIs(t, svc.ReportShortage(ctx, "ghost", 100, qty("1")), ErrNoActiveSession)

	_, err := svc.PackingView(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = svc.FinishSession(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestUnknownProductSurfaced(t *testing.T) {
	svc, _, _, _ := newTestService(batchOrders())
	ctx := context.Background()

	_, err := svc.StartSession(ctx, &StartSessionRequest{Picker: "anna", BatchID: "batch-1"})
	require.NoError(t, err)
	defer svc.AbandonSession(ctx, "anna")

	assert.ErrorIs(t, svc.ReportDone(ctx, "anna", 999), picking.ErrUnknownProduct)
}
