package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"text-adventure/internal/model"
)

// EncodeRecord serialises a state in the persisted save format.
func EncodeRecord(state *model.PlayerState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: nil player state", model.ErrInvalidInput)
	}
	s := state.Clone()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to save invalid state: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player state: %w", err)
	}
	return data, nil
}

// DecodeRecord parses a persisted record. Every field in model.RequiredFields must be present
// and non-null; anything else is reported as a corrupt record and no state is returned.
func DecodeRecord(data []byte) (*model.PlayerState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, corrupt("malformed record: %v", err)
	}
	if fields == nil {
		return nil, corrupt("record is not an object")
	}
	for _, name := range model.RequiredFields {
		raw, ok := fields[name]
		if !ok {
			return nil, corrupt("missing field '%s'", name)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, corrupt("field '%s' is null", name)
		}
	}

	var state model.PlayerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, corrupt("malformed field: %v", err)
	}
	if err := state.Validate(); err != nil {
		return nil, corrupt("%v", err)
	}
	return &state, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", model.ErrNotFound, model.ErrCorruptRecord, fmt.Sprintf(format, args...))
}
