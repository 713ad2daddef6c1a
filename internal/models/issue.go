package models

// IssueDraft is the payload for creating an issue.
// Optional fields left at their zero value are omitted from the request.
type IssueDraft struct {
	Owner     string   `json:"-"`
	Repo      string   `json:"-"`
	Title     string   `json:"title"`
	Body      string   `json:"body,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Milestone string   `json:"milestone,omitempty"`
	Assignees []string `json:"assignees,omitempty"`

	// Close requests a follow-up state change after creation
	Close bool `json:"-"`
}

// CommentDraft is the payload for creating a comment on an existing issue
type CommentDraft struct {
	Owner       string `json:"-"`
	Repo        string `json:"-"`
	IssueNumber int    `json:"-"`
	Body        string `json:"body"`
}

// Result is the outcome of a single API call
type Result struct {
	StatusCode int
	// Number is the issue number assigned or updated by the call, 0 if unknown
	Number int
}

// OK reports whether the call counts as a success
func (r Result) OK() bool {
	return r.StatusCode == 200 || r.StatusCode == 201
}

// Issue represents an exported issue
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	Labels    []string  `json:"labels"`
	Milestone string    `json:"milestone"`
	Assignees []string  `json:"assignees"`
	User      string    `json:"user"`
	CreatedAt string    `json:"created_at"`
	Comments  []Comment `json:"comments"`
}

// Comment represents an exported issue comment
type Comment struct {
	User      string `json:"user"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}
