package models

import "fmt"

// ChapterRange is a contiguous inclusive span of chapters within one book.
type ChapterRange struct {
	Book         string `json:"book"`
	StartChapter int    `json:"start_chapter"`
	EndChapter   int    `json:"end_chapter"`
}

// Len returns the number of chapters covered by the range.
func (r ChapterRange) Len() int {
	return r.EndChapter - r.StartChapter + 1
}

// Chapter is a single entry of a flattened reading plan.
type Chapter struct {
	Book   string `json:"book"`
	Number int    `json:"chapter"`
}

// String returns the provider query form, e.g. "Psalms 3".
func (c Chapter) String() string {
	return fmt.Sprintf("%s %d", c.Book, c.Number)
}
