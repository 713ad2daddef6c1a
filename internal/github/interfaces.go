package github

import (
	"context"

	"github.com/ryo246912/gh-issue-csv/internal/models"
)

// GitHubClient defines the interface for GitHub operations
type GitHubClient interface {
	CreateIssue(ctx context.Context, draft models.IssueDraft) (models.Result, error)
	UpdateIssueState(ctx context.Context, owner, repo string, number int, state string) (models.Result, error)
	CreateComment(ctx context.Context, draft models.CommentDraft) (models.Result, error)
	ListIssues(ctx context.Context, owner, repo string, withComments bool) ([]models.Issue, error)
}

// RepositoryInfo defines repository information interface
type RepositoryInfo interface {
	GetOwner() string
	GetName() string
}

// Ensure Client implements GitHubClient interface
var _ GitHubClient = (*Client)(nil)
