package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pickpack-service/internal/broker"
	"pickpack-service/internal/models"
	"pickpack-service/internal/picking"
	"pickpack-service/internal/redisclient"
	"pickpack-service/internal/store"
	"pickpack-service/internal/util"
)

var (
	// ErrSessionActive is returned when a picker already holds an active
	// session.
	ErrSessionActive = errors.New("picker already has an active session")

	// ErrNoActiveSession is returned when an action references a picker
	// with no running session.
	ErrNoActiveSession = errors.New("no active session for picker")
)

// sessionLocker is the subset of the Redis client the session service uses
// to guard the per-picker session slot.
type sessionLocker interface {
	AcquireSessionLock(ctx context.Context, picker, token string, ttl time.Duration) (bool, error)
	ReleaseSessionLock(ctx context.Context, picker, token string) error
}

// orderSource supplies the open orders of a batch in a stable sequence.
type orderSource interface {
	GetOpenOrders(ctx context.Context, batchID string) ([]models.Order, error)
	CreatePickRun(ctx context.Context, run *models.PickRun) error
}

// eventSink is the subset of the event publisher the session service needs.
type eventSink interface {
	PublishSessionStarted(ctx context.Context, event *models.SessionStartedEvent) error
	PublishShortageReported(ctx context.Context, event *models.ShortageReportedEvent) error
	PublishSessionFinished(ctx context.Context, event *models.SessionFinishedEvent) error
}

// SessionService is the only mutation entry point for pick sessions. It owns
// the session registry, the per-picker Redis lock and the event publishing
// around the in-memory picking core.
type SessionService struct {
	orders         orderSource
	locks          sessionLocker
	eventPublisher eventSink
	registry       *sessionRegistry
	lockTTL        time.Duration
	logger         *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	st *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	lockTTL time.Duration,
) *SessionService {
	return &SessionService{
		orders:         st,
		locks:          redis,
		eventPublisher: eventPublisher,
		registry:       newSessionRegistry(),
		lockTTL:        lockTTL,
		logger:         util.GetLogger(),
	}
}

// StartSessionRequest represents a request to start a pick session
type StartSessionRequest struct {
	Picker  string `json:"picker" binding:"required"`
	BatchID string `json:"batch_id" binding:"required"`
}

// SessionView is the picker-facing snapshot of a session
type SessionView struct {
	Picker         string            `json:"picker"`
	BatchID        string            `json:"batch_id"`
	StartedAt      time.Time         `json:"started_at"`
	ElapsedSeconds int64             `json:"elapsed_seconds"`
	Items          []models.PickItem `json:"items"`
}

// StartSession loads the open orders of a batch, consolidates them into pick
// items and registers the new session. A batch with no open orders starts an
// empty session rather than failing, so the caller can short-circuit to a
// "nothing to pick" outcome.
func (s *SessionService) StartSession(ctx context.Context, req *StartSessionRequest) (*SessionView, error) {
	ctx, span := util.StartSpan(ctx, "SessionService.StartSession")
	defer span.End()

	token := uuid.New().String()
	acquired, err := s.locks.AcquireSessionLock(ctx, req.Picker, token, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !acquired {
		util.SessionsRejectedTotal.WithLabelValues("session_active").Inc()
		return nil, ErrSessionActive
	}

	orders, err := s.orders.GetOpenOrders(ctx, req.BatchID)
	if err != nil {
		s.releaseLock(ctx, req.Picker, token)
		util.SessionsRejectedTotal.WithLabelValues("order_source").Inc()
		return nil, fmt.Errorf("failed to load batch %s: %w", req.BatchID, err)
	}

	session := picking.NewSession(req.Picker, req.BatchID, orders)
	if !s.registry.put(req.Picker, &activeSession{session: session, lockToken: token}) {
		session.Close()
		s.releaseLock(ctx, req.Picker, token)
		util.SessionsRejectedTotal.WithLabelValues("session_active").Inc()
		return nil, ErrSessionActive
	}

	util.SessionsStartedTotal.Inc()
	s.logger.Info("Pick session started",
		zap.String("picker", req.Picker),
		zap.String("batch_id", req.BatchID),
		zap.Int("items", len(session.Items())))

	event := &models.SessionStartedEvent{
		BaseEvent: newBaseEvent(models.EventTypeSessionStarted),
		BatchID:   req.BatchID,
		Picker:    req.Picker,
		ItemCount: len(session.Items()),
	}
	if err := s.eventPublisher.PublishSessionStarted(ctx, event); err != nil {
		s.logger.Error("Failed to publish SessionStarted event", zap.Error(err))
	}

	return s.view(session), nil
}

// GetSession returns the current session snapshot for a picker
func (s *SessionService) GetSession(picker string) (*SessionView, error) {
	active, ok := s.registry.get(picker)
	if !ok {
		return nil, ErrNoActiveSession
	}

	active.mu.Lock()
	defer active.mu.Unlock()
	return s.view(active.session), nil
}

// PendingItems returns the picker's remaining work queue
func (s *SessionService) PendingItems(picker string) ([]models.PickItem, error) {
	active, ok := s.registry.get(picker)
	if !ok {
		return nil, ErrNoActiveSession
	}

	active.mu.Lock()
	defer active.mu.Unlock()
	return active.session.PendingItems(), nil
}

// ReportDone marks a pick item as fully found, clearing any shortage record
// for the product.
func (s *SessionService) ReportDone(ctx context.Context, picker string, productID int64) error {
	_, span := util.StartSpan(ctx, "SessionService.ReportDone")
	defer span.End()

	active, ok := s.registry.get(picker)
	if !ok {
		return ErrNoActiveSession
	}

	active.mu.Lock()
	defer active.mu.Unlock()

	if err := active.session.ReportDone(productID); err != nil {
		return err
	}

	util.ItemsDoneTotal.Inc()
	s.logger.Info("Pick item done",
		zap.String("picker", picker),
		zap.Int64("product_id", productID))
	return nil
}

// ReportShortage records the actually-available quantity for a product and
// publishes a shortage event for the notification collaborator.
func (s *SessionService) ReportShortage(ctx context.Context, picker string, productID int64, actualQty decimal.Decimal) error {
	ctx, span := util.StartSpan(ctx, "SessionService.ReportShortage")
	defer span.End()

	active, ok := s.registry.get(picker)
	if !ok {
		return ErrNoActiveSession
	}

	active.mu.Lock()
	defer active.mu.Unlock()

	if err := active.session.ReportShortage(productID, actualQty); err != nil {
		if errors.Is(err, picking.ErrInvalidQuantity) {
			util.ShortageReportsRejected.WithLabelValues("invalid_quantity").Inc()
		}
		return err
	}

	util.ShortagesReportedTotal.Inc()

	var requested decimal.Decimal
	for _, item := range active.session.Items() {
		if item.ProductID == productID {
			requested = item.TotalQty
			break
		}
	}

	s.logger.Info("Shortage reported",
		zap.String("picker", picker),
		zap.Int64("product_id", productID),
		zap.String("requested", requested.String()),
		zap.String("actual", actualQty.String()))

	event := &models.ShortageReportedEvent{
		BaseEvent:    newBaseEvent(models.EventTypeShortageReported),
		BatchID:      active.session.BatchID,
		Picker:       picker,
		ProductID:    productID,
		RequestedQty: requested,
		ActualQty:    actualQty,
	}
	if err := s.eventPublisher.PublishShortageReported(ctx, event); err != nil {
		s.logger.Error("Failed to publish ShortageReported event", zap.Error(err))
	}

	return nil
}

// PackingView recomputes the packing manifest from the batch orders and the
// current shortage ledger. It is recomputed on every call; the picker may
// revise a shortage report after the view was first requested, and a cached
// manifest would go stale.
func (s *SessionService) PackingView(ctx context.Context, picker string) (*models.PackingManifest, error) {
	_, span := util.StartSpan(ctx, "SessionService.PackingView")
	defer span.End()

	active, ok := s.registry.get(picker)
	if !ok {
		return nil, ErrNoActiveSession
	}

	active.mu.Lock()
	defer active.mu.Unlock()
	return s.buildManifest(active.session), nil
}

// FinishSession ends the run: the clock stops, the final manifest is
// published for the dispatch collaborator, the run is recorded and the
// picker's session slot is released.
func (s *SessionService) FinishSession(ctx context.Context, picker string) (*models.PackingManifest, error) {
	ctx, span := util.StartSpan(ctx, "SessionService.FinishSession")
	defer span.End()

	active, ok := s.registry.get(picker)
	if !ok {
		return nil, ErrNoActiveSession
	}

	active.mu.Lock()
	defer active.mu.Unlock()

	session := active.session
	session.Close()
	manifest := s.buildManifest(session)

	event := &models.SessionFinishedEvent{
		BaseEvent:      newBaseEvent(models.EventTypeSessionFinished),
		BatchID:        session.BatchID,
		Picker:         picker,
		ElapsedSeconds: session.ElapsedSeconds(),
		Lines:          manifest.Lines,
	}
	if err := s.eventPublisher.PublishSessionFinished(ctx, event); err != nil {
		s.logger.Error("Failed to publish SessionFinished event", zap.Error(err))
	}

	run := &models.PickRun{
		BatchID:        session.BatchID,
		Picker:         picker,
		StartedAt:      session.StartedAt,
		FinishedAt:     time.Now(),
		ItemCount:      len(session.Items()),
		ShortageCount:  session.Ledger().Len(),
		ElapsedSeconds: session.ElapsedSeconds(),
	}
	if err := s.orders.CreatePickRun(ctx, run); err != nil {
		s.logger.Error("Failed to record pick run", zap.Error(err))
	}

	s.releaseLock(ctx, picker, active.lockToken)
	s.registry.remove(picker)

	util.SessionsFinishedTotal.Inc()
	s.logger.Info("Pick session finished",
		zap.String("picker", picker),
		zap.String("batch_id", session.BatchID),
		zap.Int("shortages", run.ShortageCount),
		zap.Int64("elapsed_seconds", run.ElapsedSeconds))

	return manifest, nil
}

// AbandonSession drops a session without publishing a manifest. The clock is
// stopped and the picker's slot is freed; nothing is recorded.
func (s *SessionService) AbandonSession(ctx context.Context, picker string) error {
	active, ok := s.registry.get(picker)
	if !ok {
		return ErrNoActiveSession
	}

	active.mu.Lock()
	defer active.mu.Unlock()

	active.session.Close()
	s.releaseLock(ctx, picker, active.lockToken)
	s.registry.remove(picker)

	s.logger.Info("Pick session abandoned", zap.String("picker", picker))
	return nil
}

func (s *SessionService) buildManifest(session *picking.Session) *models.PackingManifest {
	start := time.Now()
	lines := picking.Allocate(session.Orders(), session.Ledger())
	util.AllocationLatency.Observe(time.Since(start).Seconds())
	util.ManifestLinesTotal.Add(float64(len(lines)))

	return &models.PackingManifest{
		BatchID:     session.BatchID,
		Picker:      session.Picker,
		Lines:       lines,
		GeneratedAt: time.Now(),
	}
}

func (s *SessionService) view(session *picking.Session) *SessionView {
	return &SessionView{
		Picker:         session.Picker,
		BatchID:        session.BatchID,
		StartedAt:      session.StartedAt,
		ElapsedSeconds: session.ElapsedSeconds(),
		Items:          session.Items(),
	}
}

func (s *SessionService) releaseLock(ctx context.Context, picker, token string) {
	if err := s.locks.ReleaseSessionLock(ctx, picker, token); err != nil {
		s.logger.Error("Failed to release session lock",
			zap.String("picker", picker),
			zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
