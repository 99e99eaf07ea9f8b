package postgres

import "encoding/json"

func marshalJSON(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return payload
}

func unmarshalJSON(data []byte, target any) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, target)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 200
	}
	return limit
}
