package github

import (
	"context"
	"fmt"

	"github.com/ryo246912/gh-issue-csv/internal/models"
)

// StateUpdate records a call to UpdateIssueState
type StateUpdate struct {
	Number int
	State  string
}

// MockClient implements GitHubClient for testing
type MockClient struct {
	// Control test behavior. Zero statuses default to 201 (create) and 200 (update).
	CreateIssueStatus int
	UpdateStatus      int
	CommentStatus     int
	// FailTitles maps an issue title to the status its creation returns
	FailTitles map[string]int
	// FirstIssueNumber is the number assigned to the first created issue, default 1000
	FirstIssueNumber int
	// GarbledCreate makes CreateIssue report 201 with no number and a decode error
	GarbledCreate bool
	Issues        []models.Issue
	ListError     error

	// Track method calls in order: "create", "update", "comment", "list"
	Calls []string

	// Store call arguments for verification
	CreatedIssues   []models.IssueDraft
	StateUpdates    []StateUpdate
	CreatedComments []models.CommentDraft
	LastOwner       string
	LastRepo        string

	nextNumber int
}

// CreateIssue mocks issue creation, assigning sequential numbers
func (m *MockClient) CreateIssue(ctx context.Context, draft models.IssueDraft) (models.Result, error) {
	m.Calls = append(m.Calls, "create")
	m.CreatedIssues = append(m.CreatedIssues, draft)
	m.LastOwner = draft.Owner
	m.LastRepo = draft.Repo

	if status, ok := m.FailTitles[draft.Title]; ok {
		return models.Result{StatusCode: status}, NewAPIError(fmt.Sprintf("create %q returned %d", draft.Title, status))
	}

	if m.GarbledCreate {
		return models.Result{StatusCode: 201}, NewAPIError("failed to decode response body")
	}

	status := orDefault(m.CreateIssueStatus, 201)
	if status != 201 && status != 200 {
		return models.Result{StatusCode: status}, NewAPIError("create failed")
	}

	if m.nextNumber == 0 {
		m.nextNumber = orDefault(m.FirstIssueNumber, 1000)
	}
	number := m.nextNumber
	m.nextNumber++
	return models.Result{StatusCode: status, Number: number}, nil
}

// UpdateIssueState mocks the state change call
func (m *MockClient) UpdateIssueState(ctx context.Context, owner, repo string, number int, state string) (models.Result, error) {
	m.Calls = append(m.Calls, "update")
	m.StateUpdates = append(m.StateUpdates, StateUpdate{Number: number, State: state})
	m.LastOwner = owner
	m.LastRepo = repo

	status := orDefault(m.UpdateStatus, 200)
	if status != 200 {
		return models.Result{StatusCode: status, Number: number}, NewAPIError("update failed")
	}
	return models.Result{StatusCode: status, Number: number}, nil
}

// CreateComment mocks comment creation
func (m *MockClient) CreateComment(ctx context.Context, draft models.CommentDraft) (models.Result, error) {
	m.Calls = append(m.Calls, "comment")
	m.CreatedComments = append(m.CreatedComments, draft)
	m.LastOwner = draft.Owner
	m.LastRepo = draft.Repo

	status := orDefault(m.CommentStatus, 201)
	if status != 201 && status != 200 {
		return models.Result{StatusCode: status, Number: draft.IssueNumber}, NewAPIError("comment failed")
	}
	return models.Result{StatusCode: status, Number: draft.IssueNumber}, nil
}

// ListIssues mocks the GraphQL export query
func (m *MockClient) ListIssues(ctx context.Context, owner, repo string, withComments bool) ([]models.Issue, error) {
	m.Calls = append(m.Calls, "list")
	m.LastOwner = owner
	m.LastRepo = repo
	if m.ListError != nil {
		return nil, m.ListError
	}
	if withComments {
		return m.Issues, nil
	}

	stripped := make([]models.Issue, len(m.Issues))
	for i, issue := range m.Issues {
		issue.Comments = nil
		stripped[i] = issue
	}
	return stripped, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// MockRepository implements repository information for testing
type MockRepository struct {
	Owner string
	Name  string
}

func (m *MockRepository) GetOwner() string {
	return m.Owner
}

func (m *MockRepository) GetName() string {
	return m.Name
}

// CreateTestIssues builds count issues with two comments each
func CreateTestIssues(count int) []models.Issue {
	issues := make([]models.Issue, count)
	for i := 0; i < count; i++ {
		state := "open"
		if i%2 == 1 {
			state = "closed"
		}
		issues[i] = models.Issue{
			Number:    i + 1,
			Title:     fmt.Sprintf("Test issue #%d", i+1),
			Body:      fmt.Sprintf("Body %d", i+1),
			State:     state,
			Labels:    []string{"bug"},
			User:      fmt.Sprintf("user%d", i+1),
			CreatedAt: "2023-01-01T10:00:00Z",
			Comments: []models.Comment{
				{User: "reviewer1", Body: "first", CreatedAt: "2023-01-02T10:00:00Z"},
				{User: "reviewer2", Body: "second", CreatedAt: "2023-01-03T10:00:00Z"},
			},
		}
	}
	return issues
}

// NewAPIError builds an error for testing error conditions
func NewAPIError(message string) error {
	return fmt.Errorf("API error: %s", message)
}
