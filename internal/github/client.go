package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
	graphql "github.com/cli/shurcooL-graphql"
	"github.com/cockroachdb/errors"
	"github.com/ryo246912/gh-issue-csv/internal/models"
	"github.com/ryo246912/gh-issue-csv/internal/pacer"
	"go.uber.org/zap"
)

// Client wraps GitHub API clients
type Client struct {
	rest   *api.RESTClient
	gql    *api.GraphQLClient
	logger *zap.SugaredLogger
	clock  pacer.Clock
}

// NewClient builds REST and GraphQL clients sharing the same options.
// Empty Host and AuthToken fall back to the gh configuration.
func NewClient(opts api.ClientOptions, logger *zap.SugaredLogger, clock pacer.Clock) (*Client, error) {
	restClient, err := api.NewRESTClient(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create REST client")
	}

	gqlClient, err := api.NewGraphQLClient(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GraphQL client")
	}

	if clock == nil {
		clock = pacer.RealClock{}
	}

	return &Client{
		rest:   restClient,
		gql:    gqlClient,
		logger: logger,
		clock:  clock,
	}, nil
}

// CreateIssue creates an issue and returns the assigned number
func (c *Client) CreateIssue(ctx context.Context, draft models.IssueDraft) (models.Result, error) {
	path := fmt.Sprintf("repos/%s/%s/issues", draft.Owner, draft.Repo)

	var created struct {
		Number int `json:"number"`
	}
	status, err := c.send(ctx, http.MethodPost, path, draft, &created)
	if err != nil {
		return models.Result{StatusCode: status}, errors.Wrapf(err, "failed to create issue %q", draft.Title)
	}
	return models.Result{StatusCode: status, Number: created.Number}, nil
}

// UpdateIssueState sets the state ("open" or "closed") of an existing issue
func (c *Client) UpdateIssueState(ctx context.Context, owner, repo string, number int, state string) (models.Result, error) {
	path := fmt.Sprintf("repos/%s/%s/issues/%d", owner, repo, number)

	var updated struct {
		Number int `json:"number"`
	}
	status, err := c.send(ctx, http.MethodPatch, path, map[string]string{"state": state}, &updated)
	if err != nil {
		return models.Result{StatusCode: status, Number: number}, errors.Wrapf(err, "failed to update state of issue #%d", number)
	}
	return models.Result{StatusCode: status, Number: updated.Number}, nil
}

// CreateComment adds a comment to an existing issue
func (c *Client) CreateComment(ctx context.Context, draft models.CommentDraft) (models.Result, error) {
	path := fmt.Sprintf("repos/%s/%s/issues/%d/comments", draft.Owner, draft.Repo, draft.IssueNumber)

	var response interface{}
	status, err := c.send(ctx, http.MethodPost, path, draft, &response)
	if err != nil {
		return models.Result{StatusCode: status, Number: draft.IssueNumber}, errors.Wrapf(err, "failed to comment on issue #%d", draft.IssueNumber)
	}
	return models.Result{StatusCode: status, Number: draft.IssueNumber}, nil
}

// send performs a JSON request and decodes the response into out.
// A primary rate limit is retried once after the advertised reset; a secondary
// rate limit is only logged. The returned status is 0 when no response arrived.
func (c *Client) send(ctx context.Context, method, path string, payload, out interface{}) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode request body")
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.rest.RequestWithContext(ctx, method, path, bytes.NewReader(body))
		if err == nil {
			err = decodeBody(resp.Body, out)
			resp.Body.Close()
			return resp.StatusCode, err
		}

		var httpErr *api.HTTPError
		if !errors.As(err, &httpErr) {
			return 0, err
		}

		switch classifyRateLimit(httpErr) {
		case primaryRateLimit:
			c.logger.Warnw("Request quota exhausted", "method", method, "path", path)
			if attempt == 0 {
				wait := retryAfter(httpErr.Headers, c.clock.Now())
				c.logger.Infow("Retrying after rate limit reset", "wait", wait.String())
				if err := pacer.Sleep(ctx, c.clock, wait); err != nil {
					return httpErr.StatusCode, err
				}
				continue
			}
		case secondaryRateLimit:
			c.logger.Warnw("Abuse detected", "method", method, "path", path)
		}
		return httpErr.StatusCode, err
	}
}

func decodeBody(r io.Reader, out interface{}) error {
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to decode response body")
	}
	return nil
}

type pageInfo struct {
	HasNextPage bool
	EndCursor   string
}

type commentNode struct {
	Body      string
	CreatedAt string
	Author    struct {
		Login string
	}
}

// issueNode mirrors the GraphQL issue selection used for export.
// GitHub caps assignees at 10 per issue, so one page always holds them all.
type issueNode struct {
	Number    int
	Title     string
	Body      string
	State     string
	CreatedAt string
	Author    struct {
		Login string
	}
	Milestone *struct {
		Title string
	}
	Labels struct {
		Nodes []struct {
			Name string
		}
		PageInfo pageInfo
	} `graphql:"labels(first: 100)"`
	Assignees struct {
		Nodes []struct {
			Login string
		}
	} `graphql:"assignees(first: 100)"`
	Comments struct {
		Nodes    []commentNode
		PageInfo pageInfo
	} `graphql:"comments(first: 100) @include(if: $withComments)"`
}

type issuesQuery struct {
	Repository struct {
		Issues struct {
			Nodes    []issueNode
			PageInfo pageInfo
		} `graphql:"issues(first: $first, after: $endCursor, orderBy: {field: CREATED_AT, direction: ASC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type labelsQuery struct {
	Repository struct {
		Issue struct {
			Labels struct {
				Nodes []struct {
					Name string
				}
				PageInfo pageInfo
			} `graphql:"labels(first: 100, after: $endCursor)"`
		} `graphql:"issue(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type commentsQuery struct {
	Repository struct {
		Issue struct {
			Comments struct {
				Nodes    []commentNode
				PageInfo pageInfo
			} `graphql:"comments(first: 100, after: $endCursor)"`
		} `graphql:"issue(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// ListIssues fetches every issue of a repository, oldest first, using GraphQL
func (c *Client) ListIssues(ctx context.Context, owner, repo string, withComments bool) ([]models.Issue, error) {
	variables := map[string]interface{}{
		"owner":        graphql.String(owner),
		"name":         graphql.String(repo),
		"first":        graphql.Int(100),
		"endCursor":    (*graphql.String)(nil),
		"withComments": graphql.Boolean(withComments),
	}

	var issues []models.Issue
	for page := 1; ; page++ {
		var q issuesQuery
		if err := c.gql.QueryWithContext(ctx, "IssueExport", &q, variables); err != nil {
			return nil, errors.Wrapf(err, "failed to fetch issues of %s/%s", owner, repo)
		}
		c.logger.Debugw("Fetched issue page", "page", page, "count", len(q.Repository.Issues.Nodes))

		for _, node := range q.Repository.Issues.Nodes {
			issue := toIssue(node)
			if node.Labels.PageInfo.HasNextPage {
				more, err := c.listMoreLabels(ctx, owner, repo, node.Number, node.Labels.PageInfo.EndCursor)
				if err != nil {
					return nil, err
				}
				issue.Labels = append(issue.Labels, more...)
			}
			if node.Comments.PageInfo.HasNextPage {
				more, err := c.listMoreComments(ctx, owner, repo, node.Number, node.Comments.PageInfo.EndCursor)
				if err != nil {
					return nil, err
				}
				issue.Comments = append(issue.Comments, more...)
			}
			issues = append(issues, issue)
		}

		if !q.Repository.Issues.PageInfo.HasNextPage {
			break
		}
		variables["endCursor"] = graphql.String(q.Repository.Issues.PageInfo.EndCursor)
	}
	return issues, nil
}

// listMoreLabels pages through the labels of one issue starting after cursor
func (c *Client) listMoreLabels(ctx context.Context, owner, repo string, number int, cursor string) ([]string, error) {
	variables := map[string]interface{}{
		"owner":     graphql.String(owner),
		"name":      graphql.String(repo),
		"number":    graphql.Int(number),
		"endCursor": graphql.String(cursor),
	}

	var labels []string
	for {
		var q labelsQuery
		if err := c.gql.QueryWithContext(ctx, "IssueLabels", &q, variables); err != nil {
			return nil, errors.Wrapf(err, "failed to fetch labels of issue #%d", number)
		}
		for _, l := range q.Repository.Issue.Labels.Nodes {
			labels = append(labels, l.Name)
		}
		if !q.Repository.Issue.Labels.PageInfo.HasNextPage {
			return labels, nil
		}
		variables["endCursor"] = graphql.String(q.Repository.Issue.Labels.PageInfo.EndCursor)
	}
}

// listMoreComments pages through the comments of one issue starting after cursor
func (c *Client) listMoreComments(ctx context.Context, owner, repo string, number int, cursor string) ([]models.Comment, error) {
	variables := map[string]interface{}{
		"owner":     graphql.String(owner),
		"name":      graphql.String(repo),
		"number":    graphql.Int(number),
		"endCursor": graphql.String(cursor),
	}

	var comments []models.Comment
	for page := 2; ; page++ {
		var q commentsQuery
		if err := c.gql.QueryWithContext(ctx, "IssueComments", &q, variables); err != nil {
			return nil, errors.Wrapf(err, "failed to fetch comments of issue #%d", number)
		}
		c.logger.Debugw("Fetched comment page", "issue", number, "page", page, "count", len(q.Repository.Issue.Comments.Nodes))

		for _, cm := range q.Repository.Issue.Comments.Nodes {
			comments = append(comments, toComment(cm))
		}
		if !q.Repository.Issue.Comments.PageInfo.HasNextPage {
			return comments, nil
		}
		variables["endCursor"] = graphql.String(q.Repository.Issue.Comments.PageInfo.EndCursor)
	}
}

func toComment(cm commentNode) models.Comment {
	return models.Comment{
		User:      cm.Author.Login,
		Body:      cm.Body,
		CreatedAt: cm.CreatedAt,
	}
}

func toIssue(node issueNode) models.Issue {
	issue := models.Issue{
		Number:    node.Number,
		Title:     node.Title,
		Body:      node.Body,
		State:     strings.ToLower(node.State),
		User:      node.Author.Login,
		CreatedAt: node.CreatedAt,
	}
	if node.Milestone != nil {
		issue.Milestone = node.Milestone.Title
	}
	for _, l := range node.Labels.Nodes {
		issue.Labels = append(issue.Labels, l.Name)
	}
	for _, a := range node.Assignees.Nodes {
		issue.Assignees = append(issue.Assignees, a.Login)
	}
	for _, cm := range node.Comments.Nodes {
		issue.Comments = append(issue.Comments, toComment(cm))
	}
	return issue
}
