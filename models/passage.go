package models

// Translation identifies the Bible translation served by a text provider.
type Translation string

const (
	TranslationESV Translation = "ESV"
	TranslationKJV Translation = "KJV"
)

// Passage is the chapter text returned by a Bible text provider.
type Passage struct {
	Reference   string      `json:"reference"`
	Text        string      `json:"text"`
	Translation Translation `json:"translation"`
	Link        string      `json:"link"`
}
