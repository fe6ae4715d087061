package utils

import (
	"fmt"
	"reflect"
)

// ColumnTag is the struct tag the store layer derives column names from.
var ColumnTag = "db"

// StructTagValues returns the column names declared on input's fields via
// the ColumnTag tag, in declaration order. Unexported and untagged fields
// are skipped.
func StructTagValues(input any) []string {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a struct or a pointer to one")
	}

	t := v.Type()
	result := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue
		}

		tag := t.Field(i).Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}

		result = append(result, tag)
	}

	return result
}

// StructToMap maps column name to field value for every tagged field,
// suitable for squirrel's SetMap.
func StructToMap(input any) map[string]any {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a struct or a pointer to one")
	}

	t := v.Type()
	result := make(map[string]any, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue
		}

		tag := t.Field(i).Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}

		result[tag] = v.Field(i).Interface()
	}

	return result
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
