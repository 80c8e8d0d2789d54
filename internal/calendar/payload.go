package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"

	"calkids/internal/model"
)

// Upstream calendar sources answer in one of two shapes: a flat array of
// instances each carrying its own date, or a nested week/day structure of
// per-day task lists. DecodePayload detects the shape and normalizes both
// into the same flat instance form, so nothing past this boundary ever
// branches on it again.

type weekPayload struct {
	WeekStart string       `json:"weekStart"`
	WeekEnd   string       `json:"weekEnd"`
	Days      []dayPayload `json:"days"`
}

type dayPayload struct {
	Date  string        `json:"date"`
	Tasks []RawInstance `json:"tasks"`
}

// DecodePayload parses an upstream calendar response of either shape into
// normalized instances.
func DecodePayload(data []byte) ([]model.TaskInstance, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty calendar payload")
	}

	if trimmed[0] == '[' {
		var raw []RawInstance
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decode flat calendar payload: %w", err)
		}
		return normalizeAll(raw)
	}

	// Object: nested week shape, or a single day wrapper.
	var week weekPayload
	if err := json.Unmarshal(trimmed, &week); err != nil {
		return nil, fmt.Errorf("decode calendar payload: %w", err)
	}
	// A week envelope is recognized by its keys, not its contents: an
	// empty days list is a legitimate empty week, not an unknown shape.
	if week.Days != nil || week.WeekStart != "" {
		out := []model.TaskInstance{}
		for _, day := range week.Days {
			insts, err := normalizeDay(day)
			if err != nil {
				return nil, err
			}
			out = append(out, insts...)
		}
		return out, nil
	}

	var day dayPayload
	if err := json.Unmarshal(trimmed, &day); err != nil {
		return nil, fmt.Errorf("decode calendar payload: %w", err)
	}
	if day.Date == "" && day.Tasks == nil {
		return nil, fmt.Errorf("unrecognized calendar payload shape")
	}
	return normalizeDay(day)
}

func normalizeDay(day dayPayload) ([]model.TaskInstance, error) {
	out := make([]model.TaskInstance, 0, len(day.Tasks))
	for _, raw := range day.Tasks {
		if raw.Date == "" {
			raw.Date = day.Date
		}
		inst, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func normalizeAll(raw []RawInstance) ([]model.TaskInstance, error) {
	out := make([]model.TaskInstance, 0, len(raw))
	for _, r := range raw {
		inst, err := Normalize(r)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}
