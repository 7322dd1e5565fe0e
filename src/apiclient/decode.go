package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// validatable is implemented by every entity in src/models.
type validatable interface {
	Validate() error
}

// decodeStrict decodes exactly one JSON value, rejecting unknown fields and trailing data.
func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// decodeOne decodes and validates a single record.
func decodeOne[T validatable](body []byte) (T, error) {
	var v T
	if err := decodeStrict(body, &v); err != nil {
		return v, err
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}

// decodeList decodes and validates a JSON array of records. A null body is rejected.
func decodeList[T validatable](body []byte) ([]T, error) {
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, errors.New("expected a JSON array, got null")
	}
	var items []T
	if err := decodeStrict(body, &items); err != nil {
		return nil, err
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
