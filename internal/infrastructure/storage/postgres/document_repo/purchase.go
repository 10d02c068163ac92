package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
	"retailcore/internal/domain/purchase"
	"retailcore/internal/infrastructure/storage/postgres"
)

const (
	purchaseEntriesTable  = "doc_purchase_entries"
	purchaseLinesTable    = "doc_purchase_entry_lines"
	purchasePaymentsTable = "doc_purchase_entry_payments"
)

// Compile-time check.
var _ purchase.Repository = (*PurchaseEntryRepo)(nil)

// PurchaseEntryRepo implements purchase.Repository.
// The aggregate spans three tables: header, lines and payments. Lines and
// payments are replaced wholesale on update; the header row carries the
// version that guards the whole aggregate.
type PurchaseEntryRepo struct {
	*BaseDocumentRepo[*purchase.Entry]
}

// NewPurchaseEntryRepo creates a new purchase entry repository.
func NewPurchaseEntryRepo(txManager *postgres.TxManager) *PurchaseEntryRepo {
	base := NewBaseDocumentRepo[*purchase.Entry](
		txManager,
		purchaseEntriesTable,
		postgres.ExtractDBColumns[purchase.Entry](),
		func() *purchase.Entry { return &purchase.Entry{} },
	)
	// The status label is derived from the two state dimensions; it is
	// stored denormalized so lists can filter without loading lines.
	base.WithExtraColumns(func(e *purchase.Entry) map[string]any {
		return map[string]any{"status": string(e.Status())}
	})
	return &PurchaseEntryRepo{BaseDocumentRepo: base}
}

// Create inserts the entry, its lines and any initial payments.
func (r *PurchaseEntryRepo) Create(ctx context.Context, e *purchase.Entry) error {
	if err := r.CreateHeader(ctx, e); err != nil {
		return err
	}
	if err := r.saveLines(ctx, e.ID, e.Lines); err != nil {
		return err
	}
	return r.savePayments(ctx, e.ID, e.Payments)
}

// GetByID loads the full aggregate (header, lines, payments).
func (r *PurchaseEntryRepo) GetByID(ctx context.Context, tenantID, entryID id.ID) (*purchase.Entry, error) {
	e, err := r.GetHeader(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	if e.Lines, err = r.getLines(ctx, entryID); err != nil {
		return nil, err
	}
	if e.Payments, err = r.getPayments(ctx, entryID); err != nil {
		return nil, err
	}

	return e, nil
}

// Update writes the aggregate conditionally on e.Version. On success the
// stored version is incremented and e.Version is refreshed to match.
func (r *PurchaseEntryRepo) Update(ctx context.Context, e *purchase.Entry) error {
	if err := r.UpdateHeader(ctx, e); err != nil {
		return err
	}
	if err := r.saveLines(ctx, e.ID, e.Lines); err != nil {
		return err
	}
	if err := r.savePayments(ctx, e.ID, e.Payments); err != nil {
		return err
	}

	e.SetVersion(e.Version + 1)
	return nil
}

// List returns entries matching the filter with lines attached.
// Payments are not loaded; paid amounts live on the header.
func (r *PurchaseEntryRepo) List(ctx context.Context, tenantID id.ID, f purchase.ListFilter) (domain.ListResult[*purchase.Entry], error) {
	result := domain.ListResult[*purchase.Entry]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect(tenantID)

	if !f.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"reference_no": pattern},
		})
	}

	if f.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *f.SupplierID})
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where(squirrel.Eq{"status": statuses})
	}

	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": f.IDs})
	}

	err := r.countAndPage(ctx, q, f.OrderBy, f.Limit, f.Offset, &result.TotalCount, &result.Items)
	if err != nil {
		return domain.ListResult[*purchase.Entry]{}, err
	}

	// Receiving state is derived from line quantities, so even list rows
	// need their lines. One query covers the whole page.
	if err := r.attachLines(ctx, result.Items); err != nil {
		return domain.ListResult[*purchase.Entry]{}, err
	}

	return result, nil
}

// attachLines loads lines for a page of entries in one query.
func (r *PurchaseEntryRepo) attachLines(ctx context.Context, entries []*purchase.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]id.ID, 0, len(entries))
	byID := make(map[id.ID]*purchase.Entry, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
		byID[e.ID] = e
	}

	q := r.Builder().
		Select(
			"document_id", "line_id", "line_no", "product_id", "description",
			"qty_ordered", "qty_received",
			"unit_cost", "discount_amount", "tax_percent",
		).
		From(purchaseLinesTable).
		Where(squirrel.Eq{"document_id": ids}).
		OrderBy("document_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		DocumentID id.ID `db:"document_id"`
		purchase.Line
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return fmt.Errorf("attach lines: %w", err)
	}

	for i := range rows {
		if e, ok := byID[rows[i].DocumentID]; ok {
			e.Lines = append(e.Lines, rows[i].Line)
		}
	}
	return nil
}

// getLines loads lines ordered by line number.
func (r *PurchaseEntryRepo) getLines(ctx context.Context, entryID id.ID) ([]purchase.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id", "description",
			"qty_ordered", "qty_received",
			"unit_cost", "discount_amount", "tax_percent",
		).
		From(purchaseLinesTable).
		Where(squirrel.Eq{"document_id": entryID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// saveLines replaces the line set (delete existing + insert new).
func (r *PurchaseEntryRepo) saveLines(ctx context.Context, entryID id.ID, lines []purchase.Line) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + purchaseLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, entryID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id", "description",
			"qty_ordered", "qty_received",
			"unit_cost", "discount_amount", "tax_percent",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, entryID, line.LineNo, line.ProductID, line.Description,
			line.QtyOrdered, line.QtyReceived,
			line.UnitCost, line.DiscountAmount, line.TaxPercent,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// getPayments loads payments in application order.
func (r *PurchaseEntryRepo) getPayments(ctx context.Context, entryID id.ID) ([]purchase.Payment, error) {
	q := r.Builder().
		Select("payment_id", "paid_at", "method", "amount", "reference", "note").
		From(purchasePaymentsTable).
		Where(squirrel.Eq{"document_id": entryID}).
		OrderBy("seq_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []purchase.Payment
	if err := pgxscan.Select(ctx, r.querier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}

	return payments, nil
}

// savePayments replaces the payment set. The domain treats payments as
// append-only; seq_no preserves the order they were recorded in.
func (r *PurchaseEntryRepo) savePayments(ctx context.Context, entryID id.ID, payments []purchase.Payment) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + purchasePaymentsTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, entryID); err != nil {
		return fmt.Errorf("delete existing payments: %w", err)
	}

	if len(payments) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchasePaymentsTable).
		Columns("payment_id", "document_id", "seq_no", "paid_at", "method", "amount", "reference", "note")

	for i, p := range payments {
		q = q.Values(p.PaymentID, entryID, i+1, p.PaidAt, p.Method, p.Amount, p.Reference, p.Note)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert payments: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payments: %w", err)
	}

	return nil
}
