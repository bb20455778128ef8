package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio/config"
	"portfolio/models"

	gh "github.com/google/go-github/v57/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	noDescription = "No description available"
	category      = "GitHub"
	perPage       = 100
)

var syncedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portfolio_github_projects_synced_total",
	Help: "Repositories written by the GitHub sync by outcome",
}, []string{"outcome"})

type Store interface {
	UpsertGitHubProject(ctx context.Context, project models.Project) (bool, error)
}

// Syncer copies the owner's tagged repositories into the project list
type Syncer struct {
	Username string
	Topic    string
	Store    Store

	client *gh.Client
	now    func() time.Time
}

// NewSyncer authenticates with cfg.Token when set. cfg.BaseURL points the
// client at another API root, e.g. GitHub Enterprise.
func NewSyncer(ctx context.Context, cfg config.TomlGitHub, store Store) (*Syncer, error) {
	var httpClient *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
		client.BaseURL = base
	}

	return &Syncer{
		Username: cfg.Username,
		Topic:    cfg.Topic,
		Store:    store,
		client:   client,
		now:      time.Now,
	}, nil
}

func (s *Syncer) query() string {
	q := "user:" + s.Username
	if s.Topic != "" {
		q += " topic:" + s.Topic
	}
	return q
}

// Sync searches the repositories and upserts each one by its GitHub id
func (s *Syncer) Sync(ctx context.Context) (models.SyncSummary, error) {
	summary := models.SyncSummary{Timestamp: s.now().UTC()}
	if s.Username == "" {
		log.Warn("No GitHub username configured, skipping project sync")
		return summary, nil
	}

	repos, err := s.search(ctx)
	if err != nil {
		return summary, err
	}
	summary.Found = len(repos)

	for _, repo := range repos {
		created, err := s.Store.UpsertGitHubProject(ctx, toProject(repo))
		if err != nil {
			syncedTotal.WithLabelValues("error").Inc()
			log.WithFields(log.Fields{
				"repository": repo.GetFullName(),
				"error":      err,
			}).Error("Error storing project")
			continue
		}
		if created {
			summary.Added++
			syncedTotal.WithLabelValues("added").Inc()
		} else {
			summary.Updated++
			syncedTotal.WithLabelValues("updated").Inc()
		}
	}

	log.WithFields(log.Fields{
		"found":   summary.Found,
		"added":   summary.Added,
		"updated": summary.Updated,
	}).Info("GitHub project sync complete")
	return summary, nil
}

func (s *Syncer) search(ctx context.Context) ([]*gh.Repository, error) {
	opts := &gh.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var repos []*gh.Repository
	for {
		result, resp, err := s.client.Search.Repositories(ctx, s.query(), opts)
		if err != nil {
			return nil, fmt.Errorf("github search failed: %w", err)
		}
		repos = append(repos, result.Repositories...)

		if resp.NextPage == 0 {
			return repos, nil
		}
		opts.Page = resp.NextPage
	}
}

func toProject(repo *gh.Repository) models.Project {
	description := strings.TrimSpace(repo.GetDescription())
	if description == "" {
		description = noDescription
	}

	technologies := lo.Uniq(lo.Compact(append([]string{repo.GetLanguage()}, repo.Topics...)))

	return models.Project{
		GitHubId:     lo.ToPtr(repo.GetID()),
		Name:         repo.GetName(),
		Description:  description,
		URL:          repo.GetHTMLURL(),
		GitHubURL:    repo.GetHTMLURL(),
		Category:     category,
		Technologies: strings.Join(technologies, ", "),
	}
}
