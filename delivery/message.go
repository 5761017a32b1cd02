package delivery

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/coreybb/lectio/models"
)

// MaxPassageRunes keeps a message under Telegram's 4096 character limit.
const MaxPassageRunes = 3000

// passagePolicy strips any markup from provider text and escapes the rest
// for Telegram's HTML parse mode.
var passagePolicy = bluemonday.StrictPolicy()

// FormatMessage renders the daily message for Telegram's HTML parse mode.
func FormatMessage(day int, chapter models.Chapter, passage *models.Passage) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📖 <b>Today's Bible Reading - Day %d</b>\n\n", day)
	fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(chapter.String()))
	b.WriteString(passagePolicy.Sanitize(truncateRunes(passage.Text, MaxPassageRunes)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "<a href=\"%s\">Read on Bible Gateway</a>\n\n", html.EscapeString(passage.Link))
	b.WriteString("<b>Follow up Questions:</b>\n")
	b.WriteString("• What do you learn about God/Jesus?\n")
	b.WriteString("• What do you learn about yourselves?\n\n")
	b.WriteString("React to this message once read. 📖\n\n")
	fmt.Fprintf(&b, "<i>(%s)</i>", passage.Translation)

	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
