package utils

import (
	"reflect"
)

var ColumnTag = "db"

// StructTagValues lists the column tags of a struct, descending into
// embedded structs that carry no tag of their own.
func StructTagValues(input any) []string {
	targetValue := indirectStruct(input)
	return appendTagValues(make([]string, 0, targetValue.NumField()), targetValue.Type())
}

func appendTagValues(result []string, targetType reflect.Type) []string {
	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)

		tagValue := field.Tag.Get(ColumnTag)
		if field.Anonymous && tagValue == "" && field.Type.Kind() == reflect.Struct {
			result = appendTagValues(result, field.Type)
			continue
		}

		if field.PkgPath != "" || tagValue == "" || tagValue == "-" {
			continue
		}

		result = append(result, tagValue)
	}

	return result
}

// StructToMap maps column tag to field value, flattening untagged embedded
// structs the same way StructTagValues does.
func StructToMap(input any) map[string]any {
	result := make(map[string]any)
	fillMap(result, indirectStruct(input))
	return result
}

func fillMap(result map[string]any, itemValue reflect.Value) {
	itemType := itemValue.Type()

	for i := 0; i < itemValue.NumField(); i++ {
		field := itemType.Field(i)

		tagValue := field.Tag.Get(ColumnTag)
		if field.Anonymous && tagValue == "" && field.Type.Kind() == reflect.Struct {
			fillMap(result, itemValue.Field(i))
			continue
		}

		if field.PkgPath != "" || tagValue == "" || tagValue == "-" {
			continue
		}

		result[tagValue] = itemValue.Field(i).Interface()
	}
}

func indirectStruct(input any) reflect.Value {
	value := reflect.ValueOf(input)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return value
}
