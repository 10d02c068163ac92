package postgres

import (
	"reflect"
	"sync"
)

// Column lists and field mappings are derived from "db" struct tags.
// Every repository in this package builds its statements from the same
// handful of entity structs, so the per-type metadata is computed once
// and cached.

type fieldInfo struct {
	index  int
	column string
}

type structMeta struct {
	fields   []fieldInfo
	embedded []int
}

var metaCache sync.Map // reflect.Type -> *structMeta

func metaFor(t reflect.Type) *structMeta {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := metaCache.Load(t); ok {
		return cached.(*structMeta)
	}

	meta := &structMeta{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				meta.embedded = append(meta.embedded, i)
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.fields = append(meta.fields, fieldInfo{index: i, column: tag})
		}
	}
	metaCache.Store(t, meta)
	return meta
}

// ExtractDBColumns returns the column names an entity struct maps to,
// in declaration order. Embedded structs such as entity.BaseCatalog
// contribute their columns at the point of embedding, so repositories
// get the shared header columns (id, company_id, ...) first.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			cols = append(cols, columnsOf(f.Type)...)
			continue
		}
		if tag := f.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

// StructToMap flattens an entity into column -> value pairs for squirrel
// insert and update builders. Fields without a "db" tag, or tagged "-",
// are skipped. Embedded structs are flattened into the same map.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metaFor(rv.Type())
	res := make(map[string]any, len(meta.fields))

	for _, fi := range meta.fields {
		res[fi.column] = rv.Field(fi.index).Interface()
	}
	for _, i := range meta.embedded {
		for k, v := range StructToMap(rv.Field(i).Interface()) {
			res[k] = v
		}
	}
	return res
}
