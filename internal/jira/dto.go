package jira

import "github.com/starford/ansuz/internal/adf"

// searchResponse is the Jira Cloud v3 search payload, trimmed to the fields
// the sync needs.
type searchResponse struct {
	StartAt    int            `json:"startAt"`
	MaxResults int            `json:"maxResults"`
	Total      int            `json:"total"`
	Issues     []issuePayload `json:"issues"`
}

type issuePayload struct {
	Key    string        `json:"key"`
	Fields fieldsPayload `json:"fields"`
}

type fieldsPayload struct {
	Summary     string        `json:"summary"`
	Description *adf.Document `json:"description"`
	Status      namedField    `json:"status"`
	Priority    *namedField   `json:"priority"`
	IssueType   *namedField   `json:"issuetype"`
	Updated     string        `json:"updated"`
}

type namedField struct {
	Name string `json:"name"`
}
