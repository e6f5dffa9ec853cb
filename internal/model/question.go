package model

// Question is one category-specific questionnaire question.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Option is one selectable answer for a question. Selection is keyed by the
// backend-assigned id; Label is display-only.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
