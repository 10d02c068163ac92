package catalog_repo

import (
	"fmt"
	"testing"

	"retailcore/internal/core/id"
	"retailcore/internal/domain/filter"
)

func newTestRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "company_id", "col1"}, func() any { return nil })
}

func TestApplyAdvancedFilters_Operators(t *testing.T) {
	repo := newTestRepo()
	tenantID := id.New()

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Greater",
			item:     filter.Item{Field: "col1", Operator: filter.Greater, Value: 10},
			wantSQL:  "SELECT id, company_id, col1 FROM test_table WHERE company_id = $1 AND col1 > $2",
			wantArgs: []any{tenantID, 10},
		},
		{
			name:     "Less",
			item:     filter.Item{Field: "col1", Operator: filter.Less, Value: 5},
			wantSQL:  "SELECT id, company_id, col1 FROM test_table WHERE company_id = $1 AND col1 < $2",
			wantArgs: []any{tenantID, 5},
		},
		{
			name:     "Equal",
			item:     filter.Item{Field: "col1", Operator: filter.Equal, Value: "x"},
			wantSQL:  "SELECT id, company_id, col1 FROM test_table WHERE company_id = $1 AND col1 = $2",
			wantArgs: []any{tenantID, "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseQ := repo.baseSelect(tenantID)
			q, err := repo.applyAdvancedFilters(baseQ, []filter.Item{tt.item})
			if err != nil {
				t.Fatalf("applyAdvancedFilters failed: %v", err)
			}

			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			// squirrel resolves driver.Valuer args (UUIDs become strings),
			// so compare textual forms.
			for i := range args {
				if fmt.Sprint(args[i]) != fmt.Sprint(tt.wantArgs[i]) {
					t.Errorf("Args[%d] mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestApplyAdvancedFilters_RejectsUnknownColumn(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.applyAdvancedFilters(
		repo.baseSelect(id.New()),
		[]filter.Item{{Field: "evil; DROP TABLE test_table", Operator: filter.Equal, Value: 1}},
	)
	if err == nil {
		t.Fatal("expected error for non-whitelisted column")
	}
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		orderBy string
		want    string
		wantErr bool
	}{
		{orderBy: "", want: "name ASC"},
		{orderBy: "col1", want: "col1 ASC"},
		{orderBy: "-col1", want: "col1 DESC"},
		{orderBy: "+code", want: "code ASC"},
		{orderBy: "unknown_col", wantErr: true},
		{orderBy: "-", wantErr: true},
	}

	for _, tt := range tests {
		got, err := repo.parseOrderBy(tt.orderBy)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseOrderBy(%q): expected error", tt.orderBy)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseOrderBy(%q): unexpected error: %v", tt.orderBy, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseOrderBy(%q) = %q, want %q", tt.orderBy, got, tt.want)
		}
	}
}
