package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
	"retailcore/internal/domain/inventory"
	"retailcore/internal/infrastructure/storage/postgres"
)

const (
	inventoryCountsTable     = "doc_inventory_counts"
	inventoryCountLinesTable = "doc_inventory_count_lines"
)

// Compile-time check.
var _ inventory.Repository = (*InventoryCountRepo)(nil)

// InventoryCountRepo implements inventory.Repository.
type InventoryCountRepo struct {
	*BaseDocumentRepo[*inventory.InventoryCount]
}

// NewInventoryCountRepo creates a new inventory count repository.
func NewInventoryCountRepo(txManager *postgres.TxManager) *InventoryCountRepo {
	return &InventoryCountRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*inventory.InventoryCount](
			txManager,
			inventoryCountsTable,
			postgres.ExtractDBColumns[inventory.InventoryCount](),
			func() *inventory.InventoryCount { return &inventory.InventoryCount{} },
		),
	}
}

// Create inserts the count and its lines.
func (r *InventoryCountRepo) Create(ctx context.Context, c *inventory.InventoryCount) error {
	if err := r.CreateHeader(ctx, c); err != nil {
		return err
	}
	return r.saveLines(ctx, c.ID, c.Lines)
}

// GetByID loads the count with its lines.
func (r *InventoryCountRepo) GetByID(ctx context.Context, tenantID, countID id.ID) (*inventory.InventoryCount, error) {
	c, err := r.GetHeader(ctx, tenantID, countID)
	if err != nil {
		return nil, err
	}

	if c.Lines, err = r.getLines(ctx, countID); err != nil {
		return nil, err
	}
	return c, nil
}

// Update writes the count conditionally on its version.
func (r *InventoryCountRepo) Update(ctx context.Context, c *inventory.InventoryCount) error {
	if err := r.UpdateHeader(ctx, c); err != nil {
		return err
	}
	if err := r.saveLines(ctx, c.ID, c.Lines); err != nil {
		return err
	}

	c.SetVersion(c.Version + 1)
	return nil
}

// Delete soft-deletes a count.
func (r *InventoryCountRepo) Delete(ctx context.Context, tenantID, countID id.ID) error {
	return r.SoftDelete(ctx, tenantID, countID)
}

// List returns counts matching the filter, without lines.
func (r *InventoryCountRepo) List(ctx context.Context, tenantID id.ID, f inventory.ListFilter) (domain.ListResult[*inventory.InventoryCount], error) {
	result := domain.ListResult[*inventory.InventoryCount]{
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

	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where(squirrel.Eq{"status": statuses})
	}

	err := r.countAndPage(ctx, q, f.OrderBy, f.Limit, f.Offset, &result.TotalCount, &result.Items)
	if err != nil {
		return domain.ListResult[*inventory.InventoryCount]{}, err
	}

	return result, nil
}

func (r *InventoryCountRepo) getLines(ctx context.Context, countID id.ID) ([]inventory.Line, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_id", "expected_qty", "counted_qty").
		From(inventoryCountLinesTable).
		Where(squirrel.Eq{"document_id": countID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []inventory.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

func (r *InventoryCountRepo) saveLines(ctx context.Context, countID id.ID, lines []inventory.Line) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + inventoryCountLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, countID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(inventoryCountLinesTable).
		Columns("line_id", "document_id", "line_no", "product_id", "expected_qty", "counted_qty")

	for _, line := range lines {
		q = q.Values(line.LineID, countID, line.LineNo, line.ProductID, line.ExpectedQty, line.CountedQty)
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
