package catalog_repo

import (
	"fmt"
	"testing"

	"github.com/Masterminds/squirrel"

	"retailcore/internal/core/id"
)

func TestDeleteSQL_TenantScoped(t *testing.T) {
	repo := newTestRepo()
	tenantID := id.New()
	entityID := id.New()

	q := repo.Builder().
		Delete(repo.tableName).
		Where(squirrel.Eq{"company_id": tenantID}).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "DELETE FROM test_table WHERE company_id = $1 AND id = $2"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	// squirrel resolves driver.Valuer args, so UUIDs come back as strings.
	if len(args) != 2 || fmt.Sprint(args[0]) != tenantID.String() || fmt.Sprint(args[1]) != entityID.String() {
		t.Errorf("Args mismatch\nwant: [%v %v]\ngot:  %v", tenantID, entityID, args)
	}
}
