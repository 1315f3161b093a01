package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type dbField struct {
	index  int
	column string
}

// fieldCache maps a struct type to its exported db-tagged fields.
var fieldCache sync.Map

func dbFields(typ reflect.Type) ([]dbField, error) {
	if cached, ok := fieldCache.Load(typ); ok {
		return cached.([]dbField), nil
	}
	fields := make([]dbField, 0, typ.NumField())
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, dbField{index: i, column: column})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s has no db columns", typ)
	}
	fieldCache.Store(typ, fields)
	return fields, nil
}

func structValue(model any) (reflect.Value, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be a struct, got %s", v.Kind())
	}
	return v, nil
}

// Columns lists the db-tagged columns of model in field order.
func Columns(model any) ([]string, error) {
	v, err := structValue(model)
	if err != nil {
		return nil, err
	}
	fields, err := dbFields(v.Type())
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.column
	}
	return cols, nil
}

// InsertModels renders a multi-row INSERT from db-tagged structs followed by suffix,
// typically an ON CONFLICT clause. The suffix must not contain placeholders.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, fmt.Errorf("insert: no table")
	}
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no rows", table)
	}

	first, err := structValue(models[0])
	if err != nil {
		return "", nil, err
	}
	fields, err := dbFields(first.Type())
	if err != nil {
		return "", nil, err
	}

	var w sqlWriter
	w.args = make([]any, 0, len(models)*len(fields))
	cols, _ := Columns(models[0])
	fmt.Fprintf(&w, "INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))
	row := make([]any, len(fields))
	for i, model := range models {
		v, err := structValue(model)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: %w", i, err)
		}
		for j, f := range fields {
			row[j] = v.Field(f.index).Interface()
		}
		if i > 0 {
			w.WriteString(", ")
		}
		w.bindList(row)
	}
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		w.WriteByte(' ')
		w.WriteString(suffix)
	}
	return w.String(), w.args, nil
}
