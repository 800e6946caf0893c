package dto

import (
	"encoding/json"
	"time"
)

// NullableTime is a JSON time field of a partial update. Set reports whether
// the field was present; a present null leaves Value nil.
type NullableTime struct {
	Set   bool
	Value *time.Time
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

// Clear reports whether the field was sent as an explicit null.
func (n NullableTime) Clear() bool {
	return n.Set && n.Value == nil
}
