package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio/models"

	"github.com/samber/lo"
	"github.com/tmc/langchaingo/llms"
)

const draftExcerptLength = 200

var (
	ErrEmptyTopic = errors.New("topic is empty")
	// ErrUnavailable is returned by operations that have no fallback answer
	ErrUnavailable = errors.New("no language model configured")
)

var (
	blogTones   = []string{"professional", "casual", "technical"}
	blogLengths = map[string]string{
		"short":  "1-2 paragraphs",
		"medium": "2-3 paragraphs",
		"long":   "4-5 paragraphs",
	}
)

// DraftBlog asks the model for a blog post written in the owner's voice. The
// first line of the reply becomes the title and the first paragraph after it
// the excerpt. Nothing is stored.
func (a *Assistant) DraftBlog(ctx context.Context, req models.BlogRequest) (models.BlogDraft, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return models.BlogDraft{}, ErrEmptyTopic
	}
	if !lo.Contains(blogTones, req.Tone) {
		req.Tone = "professional"
	}
	paragraphs, ok := blogLengths[req.Length]
	if !ok {
		req.Length = "medium"
		paragraphs = blogLengths[req.Length]
	}

	if a.Generator == nil {
		return models.BlogDraft{}, ErrUnavailable
	}

	prompt := fmt.Sprintf(`Write a natural, engaging blog post about %q in the %s category.

Write in a %s tone that feels conversational and authentic, as if you wrote it
personally. Make it %s long. Include personal insights and practical examples
readers can relate to, and end with a conclusion that ties everything together.

Start with the title on its own line as a markdown heading. Use clean markdown
with headings and flowing paragraphs, no bullet points or asterisks.`,
		req.Topic, req.Category, req.Tone, paragraphs)

	content, err := a.Generator.Generate(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, a.Persona),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return models.BlogDraft{}, fmt.Errorf("error generating blog post: %w", err)
	}

	title, excerpt := splitDraft(content)
	if title == "" {
		title = req.Topic
	}

	return models.BlogDraft{
		Title:    title,
		Excerpt:  excerpt,
		Content:  content,
		Category: req.Category,
		Topic:    req.Topic,
	}, nil
}

// splitDraft takes the title from the first non-empty line and the excerpt
// from the first plain text line after it
func splitDraft(content string) (title, excerpt string) {
	lines := lo.FilterMap(strings.Split(content, "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		return line, line != ""
	})
	if len(lines) == 0 {
		return "", ""
	}

	title = strings.TrimSpace(strings.TrimLeft(lines[0], "#"))
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "*") {
			continue
		}
		excerpt = line
		break
	}

	if runes := []rune(excerpt); len(runes) > draftExcerptLength {
		excerpt = string(runes[:draftExcerptLength]) + "..."
	}
	return title, excerpt
}
