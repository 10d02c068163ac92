package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
)

type mockCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
	Note string `db:"-" json:"note"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{"id", "company_id", "deletion_mark", "version", "code", "name"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "note")
}

func TestStructToMap(t *testing.T) {
	companyID := id.New()
	cat := mockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				CompanyID:    companyID,
				DeletionMark: true,
				Version:      5,
			},
		},
		Code: "CU-001",
		Name: "Test Name",
		Note: "not persisted",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, companyID, m["company_id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "CU-001", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.NotContains(t, m, "note")
}

func TestStructToMap_Pointer(t *testing.T) {
	cat := &mockCatalog{Code: "X", Name: "Y"}
	m := StructToMap(cat)
	assert.Equal(t, "X", m["code"])
	assert.Equal(t, "Y", m["name"])
}
