package models

import "time"

// Kind separates the two content collections that share the ContentItem shape
type Kind string

const (
	KindBlog Kind = "blog"
	KindTool Kind = "tool"
)

func (k Kind) Valid() bool {
	return k == KindBlog || k == KindTool
}

// ContentItem is a blog post or a tool. SourceURL is the dedup key within a kind.
type ContentItem struct {
	Id            int64     `json:"id"`
	Kind          Kind      `json:"kind"`
	Title         string    `json:"title"`
	SourceURL     string    `json:"url"`
	Body          string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	Category      string    `json:"category"`
	Source        string    `json:"source,omitempty"`
	Published     bool      `json:"published"`
	Featured      bool      `json:"featured"`
	AutoFetched   bool      `json:"auto_fetched"`
	DisplayOrder  int       `json:"display_order"`
	Status        string    `json:"status,omitempty"`
	Pricing       string    `json:"pricing,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	PublishedAt   time.Time `json:"published_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// Project is a portfolio project, either synced from GitHub or entered by hand
type Project struct {
	Id           int64     `json:"id"`
	GitHubId     *int64    `json:"github_id,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	URL          string    `json:"url,omitempty"`
	GitHubURL    string    `json:"github_url,omitempty"`
	Category     string    `json:"category"`
	Technologies string    `json:"technologies,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	DisplayOrder int       `json:"display_order"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ContactSubmission struct {
	Id        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessage struct {
	Id        int64     `json:"id"`
	SessionId string    `json:"session_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// IngestSummary is the outcome of one ingestion cycle
type IngestSummary struct {
	Kind             Kind      `json:"kind"`
	Sources          int       `json:"sources"`
	FetchFailures    int       `json:"fetch_failures"`
	Fetched          int       `json:"fetched"`
	Dropped          int       `json:"dropped"`
	Denied           int       `json:"denied"`
	Added            int       `json:"added"`
	Updated          int       `json:"updated"`
	Removed          int       `json:"removed"`
	Discarded        int       `json:"discarded"`
	FailedCategories []string  `json:"failed_categories"`
	Timestamp        time.Time `json:"timestamp"`
}

// SyncSummary is the outcome of a GitHub project sync
type SyncSummary struct {
	Found     int       `json:"found"`
	Added     int       `json:"added"`
	Updated   int       `json:"updated"`
	Timestamp time.Time `json:"timestamp"`
}

// JobStatus describes one scheduled job
type JobStatus struct {
	Id       string     `json:"id"`
	NextRun  *time.Time `json:"next_run_time"`
	Interval string     `json:"interval"`
}

// IngestEvent is broadcast to dashboard clients after a cycle completes
type IngestEvent struct {
	Trigger string        `json:"trigger"`
	Summary IngestSummary `json:"summary"`
}

// BlogRequest describes a post to draft with the assistant
type BlogRequest struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
	Tone     string `json:"tone"`
	Length   string `json:"length"`
}

// BlogDraft is a generated post waiting for review before it is saved
type BlogDraft struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Topic    string `json:"topic"`
}
