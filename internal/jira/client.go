// Package jira fetches issues from the Jira Cloud REST API and maps them to
// the domain model. Only the ordered issue list crosses this boundary: the
// sync core never learns how issues were fetched or authenticated.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/starford/ansuz/internal/models"
)

const (
	searchPath   = "/rest/api/3/search"
	searchFields = "summary,description,status,priority,issuetype,updated"
	pageSize     = 50

	// Jira serialises timestamps as e.g. "2024-03-01T10:15:30.000+0100".
	jiraTimeLayout = "2006-01-02T15:04:05.000-0700"
)

// Client talks to one Jira site. With a user configured it authenticates
// with basic auth (API token as password); without one it sends the token
// as a bearer credential (PAT).
type Client struct {
	http    *http.Client
	baseURL string
	user    string
	token   string
	jql     string
}

// New creates a client for the Jira site at baseURL (scheme included).
func New(baseURL, user, token, jql string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		user:    user,
		token:   token,
		jql:     jql,
	}
}

// Search runs the configured JQL query and returns every matching issue, in
// the order the tracker returns them, following pagination to the end.
func (c *Client) Search(ctx context.Context) ([]models.Issue, error) {
	var out []models.Issue
	startAt := 0
	for {
		page, err := c.searchPage(ctx, startAt)
		if err != nil {
			return nil, err
		}
		for _, p := range page.Issues {
			out = append(out, c.toIssue(p))
		}
		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			return out, nil
		}
	}
}

func (c *Client) searchPage(ctx context.Context, startAt int) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("jira: build request: %w", err)
	}

	q := url.Values{}
	q.Set("jql", c.jql)
	q.Set("fields", searchFields)
	q.Set("startAt", strconv.Itoa(startAt))
	q.Set("maxResults", strconv.Itoa(pageSize))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.token)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("jira: search: status %d: %s", resp.StatusCode, body)
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("jira: decode search response: %w", err)
	}
	return &page, nil
}

// toIssue maps one search payload entry to the domain model. An unparseable
// timestamp degrades to the zero time rather than failing the run.
func (c *Client) toIssue(p issuePayload) models.Issue {
	issue := models.Issue{
		Key:         p.Key,
		Summary:     p.Fields.Summary,
		Status:      p.Fields.Status.Name,
		Link:        c.baseURL + "/browse/" + p.Key,
		Description: p.Fields.Description,
	}
	if p.Fields.Priority != nil {
		issue.Priority = p.Fields.Priority.Name
	}
	if p.Fields.IssueType != nil {
		issue.Type = p.Fields.IssueType.Name
	}
	if p.Fields.Updated != "" {
		if t, err := time.Parse(jiraTimeLayout, p.Fields.Updated); err == nil {
			issue.Updated = t
		} else if t, err := time.Parse(time.RFC3339, p.Fields.Updated); err == nil {
			issue.Updated = t
		}
	}
	return issue
}
