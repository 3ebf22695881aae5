package repository

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

var timeType = reflect.TypeOf(time.Time{})

// recordIDHook renders record ids as "table:key" strings
func recordIDHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch id := data.(type) {
	case models.RecordID:
		return id.String(), nil
	case *models.RecordID:
		if id == nil {
			return "", nil
		}
		return id.String(), nil
	case map[string]interface{}:
		// {"tb": "build", "id": "xxx"}
		if tb, ok := id["tb"].(string); ok {
			return fmt.Sprintf("%s:%v", tb, id["id"]), nil
		}
	}
	return data, nil
}

// dateTimeHook accepts the datetime encodings the client may hand back
func dateTimeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != timeType {
		return data, nil
	}
	switch t := data.(type) {
	case models.CustomDateTime:
		return t.Time, nil
	case *models.CustomDateTime:
		if t == nil {
			return time.Time{}, nil
		}
		return t.Time, nil
	case time.Time:
		return t, nil
	case string:
		if t == "" {
			return time.Time{}, nil
		}
		return time.Parse(time.RFC3339Nano, t)
	}
	return data, nil
}

// decodeRecord maps a raw SurrealDB record onto a document struct tagged
// with `surreal:"..."`.
func decodeRecord(raw interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			recordIDHook,
			dateTimeHook,
		),
		WeaklyTypedInput: true,
		TagName:          "surreal",
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	return nil
}
