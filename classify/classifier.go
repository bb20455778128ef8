package classify

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Classifier assigns exactly one label of its taxonomy to an entry
type Classifier interface {
	Classify(ctx context.Context, title, body string) string
}

// Completer sends a system and a user prompt to a language model
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type KeywordClassifier struct {
	Taxonomy Taxonomy
}

func (k *KeywordClassifier) Classify(_ context.Context, title, body string) string {
	return k.Taxonomy.Categorize(title, body)
}

// LLMClassifier asks a model for the label and falls back to keywords when
// the model fails or answers with something outside the taxonomy.
type LLMClassifier struct {
	Taxonomy  Taxonomy
	Completer Completer
	// Body is cut to this many runes in the prompt
	MaxPromptBody int
}

func (l *LLMClassifier) Classify(ctx context.Context, title, body string) string {
	reply, err := l.Completer.Complete(ctx, l.systemPrompt(), l.userPrompt(title, body))
	if err != nil {
		log.WithFields(log.Fields{
			"title": title,
			"error": err,
		}).Warn("LLM classification failed, using keywords")
		return l.Taxonomy.Categorize(title, body)
	}

	label := firstLine(reply)
	if !l.Taxonomy.Contains(label) {
		log.WithFields(log.Fields{
			"title": title,
			"reply": label,
		}).Warn("LLM returned an unknown category, using keywords")
		return l.Taxonomy.Categorize(title, body)
	}
	return label
}

func (l *LLMClassifier) systemPrompt() string {
	return fmt.Sprintf(`You categorize AI tools and articles. Reply with exactly one category name from this list and nothing else:
%s`, strings.Join(l.Taxonomy.Labels(), "\n"))
}

func (l *LLMClassifier) userPrompt(title, body string) string {
	limit := l.MaxPromptBody
	if limit <= 0 {
		limit = 1000
	}
	runes := []rune(body)
	if len(runes) > limit {
		body = string(runes[:limit])
	}
	return fmt.Sprintf("Title: %s\nDescription: %s", title, body)
}

func firstLine(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.IndexByte(reply, '\n'); i >= 0 {
		reply = reply[:i]
	}
	return strings.Trim(strings.TrimSpace(reply), `"'.*`)
}
