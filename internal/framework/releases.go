package framework

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-github/v74/github"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

//go:generate mockgen -destination=mocks/mock_release_source.go -package=mocks . ReleaseSource

// ReleaseSource lists the published framework versions.
type ReleaseSource interface {
	ListVersions(ctx context.Context) ([]models.FrameworkVersion, error)
}

type GitHubSource struct {
	client *github.Client
	owner  string
	repo   string
	logger *zerolog.Logger
}

// NewGitHubSource reads tags and releases of owner/repo. The token is
// optional; anonymous requests are subject to lower rate limits.
func NewGitHubSource(owner, repo, token string, logger *zerolog.Logger) *GitHubSource {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	if token = strings.TrimSpace(token); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = 10 * time.Second
	}

	return &GitHubSource{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
		logger: logger,
	}
}

// WithBaseURL points the source at a GitHub Enterprise or test server.
func (s *GitHubSource) WithBaseURL(baseURL string) error {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid GitHub base URL: %w", err)
	}
	s.client.BaseURL = u
	return nil
}

func (s *GitHubSource) ListVersions(ctx context.Context) ([]models.FrameworkVersion, error) {
	tags, _, err := s.client.Repositories.ListTags(ctx, s.owner, s.repo, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of %s/%s: %w", s.owner, s.repo, err)
	}

	versions := make([]models.FrameworkVersion, 0, len(tags))
	for _, tag := range tags {
		name := tag.GetName()
		version := models.FrameworkVersion{
			Tag:     name,
			Version: strings.TrimPrefix(name, "v"),
		}

		release, _, err := s.client.Repositories.GetReleaseByTag(ctx, s.owner, s.repo, name)
		if err != nil {
			s.logger.Debug().Err(err).Str("tag", name).Msg("No release info for tag")
		} else {
			if release.PublishedAt != nil {
				version.ReleaseDate = release.GetPublishedAt().UTC().Format(time.RFC3339)
			}
			version.Changelog = release.GetBody()
			version.IsPrerelease = release.GetPrerelease()
		}

		versions = append(versions, version)
	}

	SortVersions(versions)
	return versions, nil
}

// SortVersions orders newest first by semantic version. Tags that do not
// parse sort after all others, by name.
func SortVersions(versions []models.FrameworkVersion) {
	parsed := make(map[string]*semver.Version, len(versions))
	for _, v := range versions {
		if sv, err := semver.NewVersion(v.Version); err == nil {
			parsed[v.Tag] = sv
		}
	}

	sort.SliceStable(versions, func(i, j int) bool {
		a, aok := parsed[versions[i].Tag]
		b, bok := parsed[versions[j].Tag]
		switch {
		case aok && bok:
			return a.GreaterThan(b)
		case aok != bok:
			return aok
		default:
			return versions[i].Tag > versions[j].Tag
		}
	})
}

const cacheKey = "versions"

// CachedSource keeps the last successful listing for ttl.
type CachedSource struct {
	source ReleaseSource
	cache  *expirable.LRU[string, []models.FrameworkVersion]
}

func NewCachedSource(source ReleaseSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  expirable.NewLRU[string, []models.FrameworkVersion](1, nil, ttl),
	}
}

func (c *CachedSource) ListVersions(ctx context.Context) ([]models.FrameworkVersion, error) {
	if versions, ok := c.cache.Get(cacheKey); ok {
		return append([]models.FrameworkVersion(nil), versions...), nil
	}

	versions, err := c.source.ListVersions(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(cacheKey, versions)
	return append([]models.FrameworkVersion(nil), versions...), nil
}

// Invalidate drops the cached listing.
func (c *CachedSource) Invalidate() {
	c.cache.Purge()
}
