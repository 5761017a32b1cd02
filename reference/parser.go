// Package reference parses textual Bible references such as
// "Psalms 1-15,120-134" into ordered chapter ranges.
package reference

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coreybb/lectio/models"
)

var (
	rangeToken   = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)
	chapterToken = regexp.MustCompile(`^\d+$`)
)

// ParseError reports a malformed reference string.
type ParseError struct {
	Input  string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid reference %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid reference %q: token %q: %s", e.Input, e.Token, e.Reason)
}

// Parse converts a comma-separated reference into chapter ranges in textual
// order. The first token carries the book name, which applies to every
// following token.
func Parse(input string) ([]models.ChapterRange, error) {
	return parseInBook("", input)
}

// parseInBook is Parse with a book supplied by context, for references
// such as "1-3,10" that name no book. A book named in the first token
// takes precedence over defaultBook.
func parseInBook(defaultBook, input string) ([]models.ChapterRange, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ParseError{Input: input, Reason: "reference is empty"}
	}

	tokens := strings.Split(input, ",")
	ranges := make([]models.ChapterRange, 0, len(tokens))

	var bookName string
	var bookChapters int

	for i, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			return nil, &ParseError{Input: input, Token: raw, Reason: "empty token"}
		}

		bookPart, chapters := splitBook(token)
		if i == 0 {
			if bookPart == "" {
				bookPart = strings.TrimSpace(defaultBook)
			}
			if bookPart == "" {
				return nil, &ParseError{Input: input, Token: token, Reason: "missing book name"}
			}
			bookName, bookChapters = lookupBook(bookPart)
		} else if bookPart != "" {
			if chapterToken.MatchString(chapters) || rangeToken.MatchString(chapters) {
				return nil, &ParseError{Input: input, Token: token, Reason: "references spanning more than one book are not supported"}
			}
			return nil, &ParseError{Input: input, Token: token, Reason: "not a chapter number or range"}
		}

		start, end, err := parseChapters(chapters)
		if err != nil {
			return nil, &ParseError{Input: input, Token: token, Reason: err.Error()}
		}
		if bookChapters > 0 && end > bookChapters {
			return nil, &ParseError{
				Input:  input,
				Token:  token,
				Reason: fmt.Sprintf("%s has only %d chapters", bookName, bookChapters),
			}
		}
		if end > maxChapters {
			return nil, &ParseError{
				Input:  input,
				Token:  token,
				Reason: fmt.Sprintf("chapter %d is beyond the longest book (%d chapters)", end, maxChapters),
			}
		}

		ranges = append(ranges, models.ChapterRange{Book: bookName, StartChapter: start, EndChapter: end})
	}

	return ranges, nil
}

// splitBook separates a leading book name from the chapter part of a token.
// The book is everything up to the last letter, so numbered books such as
// "1 John 3" keep their prefix.
func splitBook(token string) (bookPart, chapters string) {
	last := strings.LastIndexFunc(token, unicode.IsLetter)
	if last < 0 {
		return "", token
	}
	_, size := utf8.DecodeRuneInString(token[last:])
	end := last + size
	return strings.TrimSpace(token[:end]), strings.TrimSpace(token[end:])
}

func parseChapters(s string) (start, end int, err error) {
	if s == "" {
		return 0, 0, fmt.Errorf("missing chapter number")
	}

	if m := rangeToken.FindStringSubmatch(s); m != nil {
		start, err = strconv.Atoi(m[1])
		if err != nil {
			return 0, 0, fmt.Errorf("chapter %q out of range", m[1])
		}
		end, err = strconv.Atoi(m[2])
		if err != nil {
			return 0, 0, fmt.Errorf("chapter %q out of range", m[2])
		}
	} else if chapterToken.MatchString(s) {
		start, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("chapter %q out of range", s)
		}
		end = start
	} else {
		return 0, 0, fmt.Errorf("not a chapter number or range")
	}

	if start < 1 {
		return 0, 0, fmt.Errorf("chapters start at 1")
	}
	if end < start {
		return 0, 0, fmt.Errorf("range end %d is before start %d", end, start)
	}
	return start, end, nil
}

// Flatten expands ranges into one entry per chapter, preserving order.
func Flatten(ranges []models.ChapterRange) []models.Chapter {
	chapters := make([]models.Chapter, 0, Count(ranges))
	for _, r := range ranges {
		for n := r.StartChapter; n <= r.EndChapter; n++ {
			chapters = append(chapters, models.Chapter{Book: r.Book, Number: n})
		}
	}
	return chapters
}

// Count returns the total number of chapters covered by ranges.
func Count(ranges []models.ChapterRange) int {
	total := 0
	for _, r := range ranges {
		total += r.Len()
	}
	return total
}
