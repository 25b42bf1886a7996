package models

// DialogState tracks where a chat is in a multi-step interaction, e.g.
// waiting for a band name after the user tapped a free slot. It survives a
// JSON round-trip through Redis, so numeric values may come back as float64.
type DialogState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data"`
}

func (s *DialogState) GetString(key string) string {
	if s.TempData == nil {
		return ""
	}
	if str, ok := s.TempData[key].(string); ok {
		return str
	}
	return ""
}

func (s *DialogState) GetInt(key string) int {
	if s.TempData == nil {
		return 0
	}
	switch v := s.TempData[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
