package availability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RawSlot is one time label of a day as sent by the endpoint.
type RawSlot struct {
	Label     string
	Available bool
}

// RawDay keeps the slots of one date in the order the endpoint sent them.
type RawDay struct {
	Date  string
	Slots []RawSlot
}

// RawAvailability is the per-date calendar decoded from content[<sub id>].
// Date order follows the response body.
type RawAvailability []RawDay

var errUnexpectedList = errors.New("unexpected non-empty list")

// UnmarshalJSON accepts an object of date -> day, or an empty list / null
// for "nothing at all".
func (r *RawAvailability) UnmarshalJSON(b []byte) error {
	*r = nil
	out := RawAvailability{}
	err := decodeOrderedObject(b, func(date string, v json.RawMessage) error {
		slots, err := decodeDay(v)
		if err != nil {
			return fmt.Errorf("date %q: %w", date, err)
		}
		out = append(out, RawDay{Date: date, Slots: slots})
		return nil
	})
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// decodeDay returns the slots of one date. A repeated label keeps its first
// position and its last flag. A falsy scalar day (false, 0, "") has no slots.
func decodeDay(b json.RawMessage) ([]RawSlot, error) {
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] != '{' && t[0] != '[' {
		v, err := decodeLoose(t)
		if err != nil {
			return nil, err
		}
		if !truthy(v) {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected day value %s", t)
	}

	var slots []RawSlot
	seen := make(map[string]int)
	err := decodeOrderedObject(b, func(label string, v json.RawMessage) error {
		flag, err := decodeLoose(v)
		if err != nil {
			return fmt.Errorf("slot %q: %w", label, err)
		}
		if i, ok := seen[label]; ok {
			slots[i].Available = truthy(flag)
			return nil
		}
		seen[label] = len(slots)
		slots = append(slots, RawSlot{Label: label, Available: truthy(flag)})
		return nil
	})
	return slots, err
}

func decodeLoose(b []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeOrderedObject walks a JSON object key by key, preserving order.
// null, [] and {} produce no callbacks. A non-empty list is an error.
func decodeOrderedObject(b []byte, fn func(key string, v json.RawMessage) error) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch tok {
	case json.Delim('['):
		if dec.More() {
			return errUnexpectedList
		}
		return nil
	case json.Delim('{'):
	default:
		return fmt.Errorf("unexpected token %v", tok)
	}

	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", kt)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return err
		}
		if err := fn(key, v); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// truthy follows the loose flag encoding of the endpoint: besides real
// booleans it sometimes sends 0/1 or strings.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return false
	}
}
