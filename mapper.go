package paddle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/ccxlv/paddle-go/internal/validation"
	"github.com/ccxlv/paddle-go/models"
)

// envelope is the outer shape of every successful Paddle response.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta"`
}

// decodeOne decodes a single-record envelope. T may itself be a slice for
// endpoints that return a fixed collection as one payload.
func decodeOne[T any](resource string, body []byte) (*models.Response[T], error) {
	env, err := splitEnvelope(resource, body)
	if err != nil {
		return nil, err
	}

	want := byte('{')
	if reflect.TypeFor[T]().Kind() == reflect.Slice {
		want = '['
	}

	var data T
	if err := decodeField(resource, "data", env.Data, want, &data); err != nil {
		return nil, err
	}
	if err := checkValue(resource, "data", data); err != nil {
		return nil, err
	}

	var meta models.Meta
	if err := decodeField(resource, "meta", env.Meta, '{', &meta); err != nil {
		return nil, err
	}
	if err := checkValue(resource, "meta", meta); err != nil {
		return nil, err
	}

	return &models.Response[T]{Data: data, Meta: meta}, nil
}

// decodeList decodes a paginated list envelope.
func decodeList[T any](resource string, body []byte) (*models.ListResponse[T], error) {
	env, err := splitEnvelope(resource, body)
	if err != nil {
		return nil, err
	}

	var data []T
	if err := decodeField(resource, "data", env.Data, '[', &data); err != nil {
		return nil, err
	}
	if err := checkValue(resource, "data", data); err != nil {
		return nil, err
	}

	var meta models.MetaWithPagination
	if err := decodeField(resource, "meta", env.Meta, '{', &meta); err != nil {
		return nil, err
	}
	if err := checkValue(resource, "meta", meta); err != nil {
		return nil, err
	}

	return &models.ListResponse[T]{Data: data, Meta: meta}, nil
}

func splitEnvelope(resource string, body []byte) (envelope, error) {
	var env envelope

	if first(body) != '{' {
		return env, &DeserializationError{Resource: resource, Reason: "response is not a JSON object"}
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return env, decodeError(resource, "", err)
	}

	return env, nil
}

// decodeField unmarshals raw into dst after checking it is present and starts
// with want ('{' or '[').
func decodeField(resource, path string, raw json.RawMessage, want byte, dst any) error {
	switch got := first(raw); {
	case got == 0:
		return &DeserializationError{Resource: resource, Field: path, Reason: "is missing"}
	case got == 'n':
		return &DeserializationError{Resource: resource, Field: path, Reason: "is null"}
	case got != want:
		return &DeserializationError{Resource: resource, Field: path, Reason: "expected " + shapeName(want)}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return decodeError(resource, path, err)
	}

	return nil
}

// checkValue validates a decoded record, or each element of a slice of records.
func checkValue(resource, path string, v any) error {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice:
		for i := range rv.Len() {
			if err := checkValue(resource, fmt.Sprintf("%s[%d]", path, i), rv.Index(i).Interface()); err != nil {
				return err
			}
		}

		return nil

	case reflect.Struct:
		violation := validation.Check(v)
		if violation == nil {
			return nil
		}

		return &DeserializationError{
			Resource: resource,
			Field:    joinPath(path, violation.Field),
			Reason:   violation.Message,
		}

	default:
		return nil
	}
}

// decodeError converts an encoding/json error into a DeserializationError.
func decodeError(resource, path string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &DeserializationError{
			Resource: resource,
			Field:    joinPath(path, typeErr.Field),
			Reason:   fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Err:      err,
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &DeserializationError{
			Resource: resource,
			Field:    path,
			Reason:   fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset),
			Err:      err,
		}
	}

	return &DeserializationError{Resource: resource, Field: path, Reason: err.Error(), Err: err}
}

func joinPath(prefix, field string) string {
	switch {
	case field == "":
		return prefix
	case prefix == "":
		return field
	case field[0] == '[':
		return prefix + field
	default:
		return prefix + "." + field
	}
}

// first returns the first non-space byte of b, or 0 if there is none.
func first(b []byte) byte {
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) == 0 {
		return 0
	}

	return b[0]
}

func shapeName(c byte) string {
	if c == '[' {
		return "an array"
	}

	return "an object"
}

// requireIncluded fails when an included relation is absent from any record.
func requireIncluded[T any](resource, relation string, items []T, present func(T) bool) error {
	for i, item := range items {
		if !present(item) {
			return &DeserializationError{
				Resource: resource,
				Field:    fmt.Sprintf("data[%d].%s", i, relation),
				Reason:   "is missing although it was included",
			}
		}
	}

	return nil
}
