package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/utils"

	gh "github.com/google/go-github/v60/github"
)

// RepoInfo is the subset of repository metadata the resolver needs.
type RepoInfo struct {
	UpdatedAt   time.Time
	Description string
}

type Tag struct {
	Name       string
	ZipballURL string
}

// Client reads one repository through the GitHub REST API.
type Client struct {
	gh    *gh.Client
	owner string
	repo  string
}

// New builds a client for the repository named by apiURL, which has the
// shape <base>/repos/<owner>/<repo>. Everything before "repos/" becomes the
// API base, so GitHub Enterprise hosts and test servers work unchanged.
func New(apiURL string, httpClient *http.Client) (*Client, error) {
	base, owner, repo, err := SplitAPIURL(apiURL)
	if err != nil {
		return nil, err
	}

	client := gh.NewClient(httpClient)
	client.BaseURL = base

	return &Client{gh: client, owner: owner, repo: repo}, nil
}

func SplitAPIURL(apiURL string) (*url.URL, string, string, error) {
	u, err := utils.ParseSecureURL(apiURL)
	if err != nil {
		return nil, "", "", errs.TransportError("github", err)
	}

	idx := strings.Index(u.Path, "/repos/")
	if idx < 0 {
		return nil, "", "", errs.TransportError("github", fmt.Errorf("api_url %q has no /repos/ segment", apiURL))
	}

	rest := strings.Trim(u.Path[idx+len("/repos/"):], "/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, "", "", errs.TransportError("github", fmt.Errorf("api_url %q does not name owner/repo", apiURL))
	}

	base := *u
	base.Path = u.Path[:idx+1]
	base.RawQuery = ""
	base.Fragment = ""

	return &base, parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

func (c *Client) Owner() string { return c.owner }
func (c *Client) Repo() string  { return c.repo }

func (c *Client) RepoInfo(ctx context.Context) (*RepoInfo, error) {
	r, _, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		logger.Debug("GitHub repository lookup failed for %s/%s: %v", c.owner, c.repo, err)
		return nil, errs.TransportError("github repo", err)
	}
	return &RepoInfo{
		UpdatedAt:   r.GetUpdatedAt().Time,
		Description: r.GetDescription(),
	}, nil
}

// Tags lists every tag of the repository, following pagination.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var tags []Tag

	for {
		page, resp, err := c.gh.Repositories.ListTags(ctx, c.owner, c.repo, opts)
		if err != nil {
			logger.Debug("GitHub tag listing failed for %s/%s: %v", c.owner, c.repo, err)
			return nil, errs.TransportError("github tags", err)
		}
		for _, t := range page {
			tags = append(tags, Tag{Name: t.GetName(), ZipballURL: t.GetZipballURL()})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return tags, nil
}

// LatestTag returns the highest-versioned tag. Tags that do not look like
// versions are ignored.
func LatestTag(tags []Tag) (Tag, bool) {
	var best Tag
	found := false
	for _, t := range tags {
		if !utils.IsVersionLike(t.Name) {
			continue
		}
		if !found || utils.IsNewerVersion(t.Name, best.Name) {
			best = t
			found = true
		}
	}
	return best, found
}
