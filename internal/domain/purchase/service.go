package purchase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/clock"
	appcontext "retailcore/internal/core/context"
	"retailcore/internal/core/id"
	"retailcore/internal/core/numerator"
	"retailcore/internal/core/security"
	"retailcore/internal/core/tx"
	"retailcore/internal/domain"
	"retailcore/pkg/logger"
)

// NumeratorPrefix is the document code prefix for purchase entries.
const NumeratorPrefix = "PE"

// Auditor records before/after snapshots of purchase mutations.
// The postgres audit trail implements it; a nil Auditor disables auditing.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, oldState, newState any) error
}

// Service orchestrates purchase entry operations: transaction scope,
// optimistic-concurrency checks, code generation, event publishing and
// auditing. All domain rules live on the aggregate.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numerator numerator.Generator
	clock     clock.Clock
	policies  *security.PolicyEngine
	publisher EventPublisher
	auditor   Auditor
	hooks     *domain.HookRegistry[*Entry]
}

// NewService creates a purchase entry service. policies, publisher and
// auditor may be nil; the corresponding concern is then skipped.
func NewService(
	repo Repository,
	txManager tx.Manager,
	gen numerator.Generator,
	clk clock.Clock,
	policies *security.PolicyEngine,
	publisher EventPublisher,
	auditor Auditor,
) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		numerator: gen,
		clock:     clk,
		policies:  policies,
		publisher: publisher,
		auditor:   auditor,
		hooks:     domain.NewHookRegistry[*Entry](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Entry] {
	return s.hooks
}

// Create builds, validates and persists a new purchase entry. The code
// is auto-generated unless the request supplies one; either way it must
// be unique within the tenant (case-insensitive). An initial payment,
// when present, is applied in the same transaction.
func (s *Service) Create(ctx context.Context, tenantID id.ID, req CreateRequest) (*Entry, error) {
	if id.IsNil(tenantID) {
		return nil, apperror.NewValidation("tenant is required")
	}

	now := s.clock.Now()
	e, err := NewEntry(ctx, tenantID, req, now)
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunBeforeCreate(ctx, e); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if e.Code == "" {
			cfg := numerator.DefaultConfig(NumeratorPrefix)
			code, err := s.numerator.NextCode(txCtx, tenantID, cfg, numerator.DefaultOptions(), now)
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			e.Code = code
		} else {
			taken, err := s.repo.ExistsByCode(txCtx, tenantID, e.Code)
			if err != nil {
				return fmt.Errorf("check code: %w", err)
			}
			if taken {
				return apperror.NewDuplicateCode("purchase entry", e.Code)
			}
		}

		if req.InitialPayment != nil {
			p := NewPayment(
				req.InitialPayment.Method,
				req.InitialPayment.Amount,
				req.InitialPayment.Reference,
				req.InitialPayment.Note,
				now,
			)
			if err := e.RecordPayment(p, now); err != nil {
				return err
			}
		}

		if err := s.repo.Create(txCtx, e); err != nil {
			return err
		}
		if err := s.publish(txCtx, e); err != nil {
			return err
		}
		s.audit(txCtx, e.ID, "create", nil, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterCreate(ctx, e); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "purchase entry created",
		"id", e.ID,
		"code", e.Code,
		"status", e.Status())
	return e, nil
}

// GetByID loads the full aggregate.
func (s *Service) GetByID(ctx context.Context, tenantID, entryID id.ID) (*Entry, error) {
	return s.repo.GetByID(ctx, tenantID, entryID)
}

// List returns entry headers matching the filter.
func (s *Service) List(ctx context.Context, tenantID id.ID, f ListFilter) (domain.ListResult[*Entry], error) {
	if f.Limit <= 0 {
		f.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.List(ctx, tenantID, f)
}

// Confirm moves a draft entry to the confirmed state.
func (s *Service) Confirm(ctx context.Context, tenantID, entryID id.ID, version int) (*Entry, error) {
	return s.mutate(ctx, tenantID, entryID, version, "confirm", func(_ context.Context, e *Entry, now time.Time) error {
		return e.Confirm(now)
	})
}

// UpdateLines replaces, inserts and removes lines on the entry.
func (s *Service) UpdateLines(ctx context.Context, tenantID, entryID id.ID, version int, changes LineChanges) (*Entry, error) {
	return s.mutate(ctx, tenantID, entryID, version, "update_lines", func(txCtx context.Context, e *Entry, now time.Time) error {
		return e.ApplyLineChanges(txCtx, changes, now)
	})
}

// Receive applies a receipt batch, all-or-nothing.
func (s *Service) Receive(ctx context.Context, tenantID, entryID id.ID, version int, batch ReceiveBatch) (*Entry, error) {
	return s.mutate(ctx, tenantID, entryID, version, "receive", func(_ context.Context, e *Entry, now time.Time) error {
		return e.Receive(batch, now)
	})
}

// Pay records a payment against the entry. The balance check runs
// against the aggregate freshly read inside the write transaction, so a
// stale caller fails on the version condition rather than overdrawing.
func (s *Service) Pay(ctx context.Context, tenantID, entryID id.ID, version int, req PaymentRequest) (*Entry, error) {
	return s.mutate(ctx, tenantID, entryID, version, "pay", func(_ context.Context, e *Entry, now time.Time) error {
		p := NewPayment(req.Method, req.Amount, req.Reference, req.Note, now)
		return e.RecordPayment(p, now)
	})
}

// Cancel marks the entry cancelled after checking the tenant's
// cancellation policy.
func (s *Service) Cancel(ctx context.Context, tenantID, entryID id.ID, version int) (*Entry, error) {
	return s.mutate(ctx, tenantID, entryID, version, "cancel", func(txCtx context.Context, e *Entry, now time.Time) error {
		if err := s.checkCancelPolicy(txCtx, e); err != nil {
			return err
		}
		return e.Cancel(now)
	})
}

// mutate is the shared write path: read inside the transaction, verify
// the caller's version, apply the operation, conditionally write,
// publish events and audit. A moved version surfaces as
// CONCURRENT_MODIFICATION either at the fast-path check or at the
// conditional update.
func (s *Service) mutate(
	ctx context.Context,
	tenantID, entryID id.ID,
	version int,
	action string,
	op func(txCtx context.Context, e *Entry, now time.Time) error,
) (*Entry, error) {
	if id.IsNil(tenantID) {
		return nil, apperror.NewValidation("tenant is required")
	}

	var result *Entry
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		e, err := s.repo.GetByID(txCtx, tenantID, entryID)
		if err != nil {
			return err
		}
		if e.Version != version {
			return apperror.NewConcurrentModification("purchase entry", entryID).
				WithDetail("expected", version).
				WithDetail("actual", e.Version)
		}

		before := snapshot(e)

		if err := s.hooks.RunBeforeUpdate(txCtx, e); err != nil {
			return err
		}

		now := s.clock.Now()
		if err := op(txCtx, e, now); err != nil {
			return err
		}
		e.SetUpdatedAt(now.UTC())
		e.UpdatedBy = appcontext.GetUserID(txCtx)

		if err := s.repo.Update(txCtx, e); err != nil {
			return err
		}
		if err := s.publish(txCtx, e); err != nil {
			return err
		}
		s.audit(txCtx, e.ID, action, before, e)

		if err := s.hooks.RunAfterUpdate(txCtx, e); err != nil {
			logger.Warn(txCtx, "after-update hook failed", "error", err)
		}

		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase entry updated",
		"id", result.ID,
		"action", action,
		"status", result.Status(),
		"version", result.Version)
	return result, nil
}

func (s *Service) publish(ctx context.Context, e *Entry) error {
	events := e.DrainEvents()
	if s.publisher == nil || len(events) == 0 {
		return nil
	}
	return s.publisher.Publish(ctx, events...)
}

func (s *Service) audit(ctx context.Context, entryID id.ID, action string, oldState, newState any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogChange(ctx, AggregateType, entryID, action, oldState, newState); err != nil {
		logger.Warn(ctx, "audit log failed", "error", err, "entry_id", entryID)
	}
}

// checkCancelPolicy evaluates the tenant's cancellation rule against the
// entry and the calling user. No configured engine means no extra rule.
func (s *Service) checkCancelPolicy(ctx context.Context, e *Entry) error {
	if s.policies == nil {
		return nil
	}

	entryFacts := map[string]any{
		"received_any":   e.ReceivingDimension() != ReceivingNone,
		"fully_received": e.ReceivingDimension() == ReceivingFull,
		"draft":          e.Draft,
		"amount_paid":    e.AmountPaid.InexactFloat64(),
		"amount_due":     e.AmountDue.InexactFloat64(),
	}

	userFacts := map[string]any{
		"id":       "",
		"role":     "",
		"is_admin": false,
	}
	if u := appcontext.GetUser(ctx); u != nil {
		userFacts["id"] = u.UserID
		userFacts["role"] = strings.ToLower(u.Role)
		userFacts["is_admin"] = u.IsAdmin
	}

	return s.policies.Allow(security.PolicyCancelPurchase, entryFacts, userFacts)
}

// snapshot copies the audit-relevant state of the entry before mutation.
func snapshot(e *Entry) map[string]any {
	lines := make([]map[string]any, 0, len(e.Lines))
	for i := range e.Lines {
		lines = append(lines, map[string]any{
			"lineId":      e.Lines[i].LineID,
			"qtyOrdered":  e.Lines[i].QtyOrdered.Int64(),
			"qtyReceived": e.Lines[i].QtyReceived.Int64(),
		})
	}
	return map[string]any{
		"status":     string(e.Status()),
		"grandTotal": e.GrandTotal.String(),
		"amountPaid": e.AmountPaid.String(),
		"amountDue":  e.AmountDue.String(),
		"version":    e.Version,
		"lines":      lines,
	}
}
