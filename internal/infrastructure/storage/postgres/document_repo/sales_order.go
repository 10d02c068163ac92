package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
	"retailcore/internal/domain/orders"
	"retailcore/internal/infrastructure/storage/postgres"
)

const (
	salesOrdersTable     = "doc_sales_orders"
	salesOrderLinesTable = "doc_sales_order_lines"
)

// Compile-time check.
var _ orders.Repository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implements orders.Repository.
type SalesOrderRepo struct {
	*BaseDocumentRepo[*orders.SalesOrder]
}

// NewSalesOrderRepo creates a new sales order repository.
func NewSalesOrderRepo(txManager *postgres.TxManager) *SalesOrderRepo {
	return &SalesOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*orders.SalesOrder](
			txManager,
			salesOrdersTable,
			postgres.ExtractDBColumns[orders.SalesOrder](),
			func() *orders.SalesOrder { return &orders.SalesOrder{} },
		),
	}
}

// Create inserts the order and its lines.
func (r *SalesOrderRepo) Create(ctx context.Context, o *orders.SalesOrder) error {
	if err := r.CreateHeader(ctx, o); err != nil {
		return err
	}
	return r.saveLines(ctx, o.ID, o.Lines)
}

// GetByID loads the order with its lines.
func (r *SalesOrderRepo) GetByID(ctx context.Context, tenantID, orderID id.ID) (*orders.SalesOrder, error) {
	o, err := r.GetHeader(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if o.Lines, err = r.getLines(ctx, orderID); err != nil {
		return nil, err
	}
	return o, nil
}

// Update writes the order conditionally on its version.
func (r *SalesOrderRepo) Update(ctx context.Context, o *orders.SalesOrder) error {
	if err := r.UpdateHeader(ctx, o); err != nil {
		return err
	}
	if err := r.saveLines(ctx, o.ID, o.Lines); err != nil {
		return err
	}

	o.SetVersion(o.Version + 1)
	return nil
}

// Delete soft-deletes an order.
func (r *SalesOrderRepo) Delete(ctx context.Context, tenantID, orderID id.ID) error {
	return r.SoftDelete(ctx, tenantID, orderID)
}

// List returns orders matching the filter, without lines.
func (r *SalesOrderRepo) List(ctx context.Context, tenantID id.ID, f orders.ListFilter) (domain.ListResult[*orders.SalesOrder], error) {
	result := domain.ListResult[*orders.SalesOrder]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect(tenantID)

	if !f.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if f.Search != "" {
		q = q.Where(squirrel.ILike{"code": "%" + f.Search + "%"})
	}

	if f.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *f.CustomerID})
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where(squirrel.Eq{"status": statuses})
	}

	err := r.countAndPage(ctx, q, f.OrderBy, f.Limit, f.Offset, &result.TotalCount, &result.Items)
	if err != nil {
		return domain.ListResult[*orders.SalesOrder]{}, err
	}

	return result, nil
}

func (r *SalesOrderRepo) getLines(ctx context.Context, orderID id.ID) ([]orders.Line, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_id", "qty", "unit_price", "discount_amount").
		From(salesOrderLinesTable).
		Where(squirrel.Eq{"document_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []orders.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

func (r *SalesOrderRepo) saveLines(ctx context.Context, orderID id.ID, lines []orders.Line) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + salesOrderLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, orderID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(salesOrderLinesTable).
		Columns("line_id", "document_id", "line_no", "product_id", "qty", "unit_price", "discount_amount")

	for _, line := range lines {
		q = q.Values(line.LineID, orderID, line.LineNo, line.ProductID, line.Qty, line.UnitPrice, line.DiscountAmount)
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
