// Package codec converts between the flat wire JSON representation of records
// and typed entities. Decoding is self-describing from the annotation keys in
// the payload; encoding needs the organization metadata to name lookup
// bindings.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/crmkit/dataverse/pkg/entity"
	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// Wire annotation suffixes the decoder consumes.
const (
	LookupLogicalNameAnnotation = "@Microsoft.Dynamics.CRM.lookuplogicalname"
	FormattedValueAnnotation    = "@OData.Community.Display.V1.FormattedValue"
)

// Decode converts a wire record into a typed entity. Keys are processed in
// their original payload order; for each key the first matching rule wins:
// annotation skip, lookup pattern, choice pattern, identifier match, scalar
// passthrough.
func Decode(logicalName string, payload []byte) (*entity.Entity, error) {
	e, err := entity.New(logicalName)
	if err != nil {
		return nil, err
	}

	keys, attrs, err := parseOrdered(payload)
	if err != nil {
		return nil, dverrors.NewError("decode", logicalName, err)
	}

	idKey := logicalName + "id"
	for _, key := range keys {
		value := attrs[key]
		switch {
		case strings.HasPrefix(key, "@"):
			// Payload-level annotation, not an attribute.

		case strings.HasPrefix(key, "_") && strings.HasSuffix(key, "_value"):
			if isAbsent(value) {
				continue
			}
			raw, ok := value.(string)
			if !ok {
				return nil, dverrors.NewError("decode", logicalName,
					fmt.Errorf("%w: key %q is not a string", dverrors.ErrMalformedID, key))
			}
			id, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				return nil, dverrors.NewError("decode", logicalName,
					fmt.Errorf("%w: key %q: %q", dverrors.ErrMalformedID, key, raw))
			}
			name := strings.TrimSuffix(strings.TrimPrefix(key, "_"), "_value")
			target, _ := attrs[key+LookupLogicalNameAnnotation].(string)
			display, _ := attrs[key+FormattedValueAnnotation].(string)
			e.Set(name, entity.EntityReference{
				LogicalName: target,
				ID:          id,
				Name:        display,
			})

		case isChoice(key, value, attrs):
			num := value.(json.Number)
			v64, _ := num.Int64()
			label, _ := attrs[key+FormattedValueAnnotation].(string)
			e.Set(key, entity.NewOptionSet(int(v64), label))

		case key == idKey:
			raw, ok := value.(string)
			if !ok {
				return nil, dverrors.NewError("decode", logicalName,
					fmt.Errorf("%w: key %q is not a string", dverrors.ErrMalformedID, key))
			}
			id, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				return nil, dverrors.NewError("decode", logicalName,
					fmt.Errorf("%w: key %q: %q", dverrors.ErrMalformedID, key, raw))
			}
			e.ID = id
			e.Set(key, raw)

		default:
			e.Set(key, normalizeScalar(value))
		}
	}

	return e, nil
}

// isChoice reports whether a key carries a choice value: an integer payload
// with a formatted-value annotation on the same base key.
func isChoice(key string, value any, attrs map[string]any) bool {
	num, ok := value.(json.Number)
	if !ok {
		return false
	}
	if _, err := num.Int64(); err != nil {
		return false
	}
	_, annotated := attrs[key+FormattedValueAnnotation]
	return annotated
}

// isAbsent treats JSON null and the empty string as a missing lookup value.
func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// normalizeScalar converts json.Number payloads into int64 or float64 so
// callers see plain Go scalars.
func normalizeScalar(value any) any {
	num, ok := value.(json.Number)
	if !ok {
		return value
	}
	if i, err := num.Int64(); err == nil {
		return i
	}
	if f, err := num.Float64(); err == nil {
		return f
	}
	return num.String()
}

// parseOrdered reads a flat JSON object, returning its keys in payload order
// alongside the decoded values. Numbers stay json.Number so integer and
// floating payloads remain distinguishable.
func parseOrdered(payload []byte) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("parse record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("parse record: expected object, got %v", tok)
	}

	keys := make([]string, 0, 16)
	attrs := make(map[string]any, 16)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("parse record: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("parse record: expected key, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("parse record key %q: %w", key, err)
		}
		if _, seen := attrs[key]; !seen {
			keys = append(keys, key)
		}
		attrs[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("parse record: %w", err)
	}
	return keys, attrs, nil
}
