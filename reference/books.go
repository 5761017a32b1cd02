package reference

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// book holds the canonical name and chapter count of a Protestant-canon book.
type book struct {
	Name     string
	Chapters int
}

var canon = []book{
	{"Genesis", 50}, {"Exodus", 40}, {"Leviticus", 27}, {"Numbers", 36},
	{"Deuteronomy", 34}, {"Joshua", 24}, {"Judges", 21}, {"Ruth", 4},
	{"1 Samuel", 31}, {"2 Samuel", 24}, {"1 Kings", 22}, {"2 Kings", 25},
	{"1 Chronicles", 29}, {"2 Chronicles", 36}, {"Ezra", 10}, {"Nehemiah", 13},
	{"Esther", 10}, {"Job", 42}, {"Psalms", 150}, {"Proverbs", 31},
	{"Ecclesiastes", 12}, {"Song of Solomon", 8}, {"Isaiah", 66}, {"Jeremiah", 52},
	{"Lamentations", 5}, {"Ezekiel", 48}, {"Daniel", 12}, {"Hosea", 14},
	{"Joel", 3}, {"Amos", 9}, {"Obadiah", 1}, {"Jonah", 4},
	{"Micah", 7}, {"Nahum", 3}, {"Habakkuk", 3}, {"Zephaniah", 3},
	{"Haggai", 2}, {"Zechariah", 14}, {"Malachi", 4},
	{"Matthew", 28}, {"Mark", 16}, {"Luke", 24}, {"John", 21},
	{"Acts", 28}, {"Romans", 16}, {"1 Corinthians", 16}, {"2 Corinthians", 13},
	{"Galatians", 6}, {"Ephesians", 6}, {"Philippians", 4}, {"Colossians", 4},
	{"1 Thessalonians", 5}, {"2 Thessalonians", 3}, {"1 Timothy", 6}, {"2 Timothy", 4},
	{"Titus", 3}, {"Philemon", 1}, {"Hebrews", 13}, {"James", 5},
	{"1 Peter", 5}, {"2 Peter", 3}, {"1 John", 5}, {"2 John", 1},
	{"3 John", 1}, {"Jude", 1}, {"Revelation", 22},
}

// aliases maps common abbreviations to canonical names.
var aliases = map[string]string{
	"gen": "Genesis", "ex": "Exodus", "exod": "Exodus", "lev": "Leviticus",
	"num": "Numbers", "deut": "Deuteronomy", "josh": "Joshua", "judg": "Judges",
	"ps": "Psalms", "psa": "Psalms", "psalm": "Psalms",
	"prov": "Proverbs", "eccl": "Ecclesiastes", "song": "Song of Solomon",
	"song of songs": "Song of Solomon", "isa": "Isaiah", "jer": "Jeremiah",
	"lam": "Lamentations", "ezek": "Ezekiel", "dan": "Daniel",
	"matt": "Matthew", "mt": "Matthew", "mk": "Mark", "lk": "Luke", "jn": "John",
	"rom": "Romans", "gal": "Galatians", "eph": "Ephesians", "phil": "Philippians",
	"col": "Colossians", "heb": "Hebrews", "jas": "James", "rev": "Revelation",
}

var byLowerName = func() map[string]book {
	m := make(map[string]book, len(canon))
	for _, b := range canon {
		m[strings.ToLower(b.Name)] = b
	}
	return m
}()

// maxChapters is the chapter count of the longest book. It bounds
// references to books outside the canon.
var maxChapters = func() int {
	n := 0
	for _, b := range canon {
		n = max(n, b.Chapters)
	}
	return n
}()

// lookupBook normalises a book name. Known books come back with their
// chapter count; unknown books are title-cased with a zero count.
func lookupBook(raw string) (name string, chapters int) {
	key := strings.ToLower(strings.Join(strings.Fields(strings.TrimSuffix(raw, ".")), " "))
	if alias, ok := aliases[key]; ok {
		key = strings.ToLower(alias)
	}
	if b, ok := byLowerName[key]; ok {
		return b.Name, b.Chapters
	}
	// A Caser keeps state and is not safe for concurrent use.
	return cases.Title(language.English).String(key), 0
}
