package feeds

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	entityPattern     = regexp.MustCompile(`&[a-zA-Z]+;`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Entry is a normalized feed entry ready for classification
type Entry struct {
	Title       string     `json:"title"`
	Link        string     `json:"url"`
	Body        string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Source      string     `json:"source"`
}

// Normalizer turns raw entries into clean plain text entries
type Normalizer struct {
	// Bodies shorter than this many runes get the padding sentence appended
	MinBodyLength int
	// Bodies are cut to this many runes, zero keeps them whole
	MaxBodyLength int
	ExcerptLength int
	Padding       string
}

// Normalize cleans a raw entry. It reports false when the entry has no link
// and cannot be stored.
func (n *Normalizer) Normalize(raw RawEntry) (Entry, bool) {
	link := strings.TrimSpace(raw.Link)
	title := collapse(html.UnescapeString(raw.Title))

	if link == "" {
		log.WithFields(log.Fields{
			"title":  title,
			"source": raw.Source,
		}).Debug("Dropping entry without link")
		return Entry{}, false
	}
	if title == "" {
		title = link
	}

	body := raw.Summary
	if strings.TrimSpace(body) == "" {
		body = raw.Content
	}
	body = n.pad(truncate(CleanText(body), n.MaxBodyLength))

	return Entry{
		Title:       title,
		Link:        link,
		Body:        body,
		Excerpt:     truncate(body, n.ExcerptLength),
		PublishedAt: raw.Published,
		Source:      raw.Source,
	}, true
}

func (n *Normalizer) pad(body string) string {
	if n.Padding == "" || len([]rune(body)) >= n.MinBodyLength {
		return body
	}
	if body == "" {
		return n.Padding
	}
	return body + " " + n.Padding
}

// CleanText reduces markup to a single line of readable text without URLs
func CleanText(text string) string {
	text = strings.TrimSpace(html.UnescapeString(text))
	text = stripTags(text)
	text = entityPattern.ReplaceAllString(text, " ")
	text = collapse(text)
	text = urlPattern.ReplaceAllString(text, "")
	return collapse(text)
}

func stripTags(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return tagPattern.ReplaceAllString(text, " ")
	}
	doc.Find("script, style").Remove()

	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if s := strings.TrimSpace(node.Data); s != "" {
				parts = append(parts, s)
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range doc.Nodes {
		walk(node)
	}

	return strings.Join(parts, " ")
}

func collapse(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// truncate keeps the first limit runes and marks the cut with "..."
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
