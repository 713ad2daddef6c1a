package service

import (
	"testing"

	"github.com/ryo246912/gh-issue-csv/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_IssueFields(t *testing.T) {
	header := []string{"number", "title", "body", "labels", "milestone", "assignee", "state"}

	tests := []struct {
		name      string
		sourceURL string
		row       []string
		expected  models.IssueDraft
	}{
		{
			name: "all fields populated",
			row:  []string{"5", "Bug", "Steps", "a,b", "3", "alice, bob", "closed"},
			expected: models.IssueDraft{
				Owner:     "owner",
				Repo:      "repo",
				Title:     "Bug",
				Body:      "Steps",
				Labels:    []string{"a", "b"},
				Milestone: "3",
				Assignees: []string{"alice", "bob"},
				Close:     true,
			},
		},
		{
			name:     "empty cells are omitted",
			row:      []string{"5", "Bug", "", "", "", "", ""},
			expected: models.IssueDraft{Owner: "owner", Repo: "repo", Title: "Bug"},
		},
		{
			name:     "open state is not requested",
			row:      []string{"5", "Bug", "", "", "", "", "open"},
			expected: models.IssueDraft{Owner: "owner", Repo: "repo", Title: "Bug"},
		},
		{
			name:      "provenance note with source url",
			sourceURL: "https://github.com/old/repo/",
			row:       []string{"5", "Bug", "Steps", "", "", "", ""},
			expected: models.IssueDraft{
				Owner: "owner",
				Repo:  "repo",
				Title: "Bug",
				Body:  "This issue was copied from https://github.com/old/repo/issues/5\n\n----\nSteps",
			},
		},
		{
			name:      "no provenance without a source number",
			sourceURL: "https://github.com/old/repo",
			row:       []string{"", "Bug", "Steps", "", "", "", ""},
			expected:  models.IssueDraft{Owner: "owner", Repo: "repo", Title: "Bug", Body: "Steps"},
		},
		{
			name:     "label names are trimmed",
			row:      []string{"1", "Bug", "", "a, b,,", "", "", ""},
			expected: models.IssueDraft{Owner: "owner", Repo: "repo", Title: "Bug", Labels: []string{"a", "b"}},
		},
		{
			name:     "short row",
			row:      []string{"1", "Bug"},
			expected: models.IssueDraft{Owner: "owner", Repo: "repo", Title: "Bug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := ResolveHeader(header)
			require.NoError(t, err)
			translator := NewTranslator(schema, "owner", "repo", tt.sourceURL)

			original := append([]string(nil), tt.row...)
			tr := translator.Translate(tt.row, NewRemapTable())

			assert.Equal(t, IssueRow, tr.Kind)
			assert.Equal(t, tt.expected, tr.Issue)
			assert.Equal(t, original, tt.row, "row must not be mutated")
		})
	}
}

func TestTranslator_SimpleSchemaNeverYieldsComments(t *testing.T) {
	schema, err := ResolveHeader([]string{"title", "comment.created_at"})
	require.NoError(t, err)

	tr := NewTranslator(schema, "o", "r", "").Translate([]string{"X", "2020-1-1"}, NewRemapTable())

	assert.Equal(t, IssueRow, tr.Kind)
}

func TestTranslator_CommentRows(t *testing.T) {
	header := []string{"issue.number", "issue.title", "comment.user", "comment.created_at", "comment.body"}

	tests := []struct {
		name           string
		row            []string
		remap          map[int]int
		expectedKind   RowKind
		expectedSkip   bool
		expectedReason string
		expected       models.CommentDraft
	}{
		{
			name:         "comment with author",
			row:          []string{"5", "X", "bob", "2020-1-1", "hi"},
			remap:        map[int]int{5: 1001},
			expectedKind: CommentRow,
			expected: models.CommentDraft{
				Owner:       "owner",
				Repo:        "repo",
				IssueNumber: 1001,
				Body:        "Comment from @bob:\n\nhi",
			},
		},
		{
			name:         "comment without author",
			row:          []string{"5", "X", "", "2020-1-1", "hi"},
			remap:        map[int]int{5: 1001},
			expectedKind: CommentRow,
			expected:     models.CommentDraft{Owner: "owner", Repo: "repo", IssueNumber: 1001, Body: "hi"},
		},
		{
			name:           "unknown source issue",
			row:            []string{"99", "X", "bob", "2020-1-1", "hi"},
			remap:          map[int]int{5: 1001},
			expectedKind:   CommentRow,
			expectedSkip:   true,
			expectedReason: "issue was not imported",
		},
		{
			name:           "empty body",
			row:            []string{"5", "X", "bob", "2020-1-1", ""},
			remap:          map[int]int{5: 1001},
			expectedKind:   CommentRow,
			expectedSkip:   true,
			expectedReason: "empty comment body",
		},
		{
			name:         "empty timestamp makes an issue row",
			row:          []string{"5", "X", "bob", "", "hi"},
			expectedKind: IssueRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := ResolveHeader(header)
			require.NoError(t, err)
			remap := NewRemapTable()
			for src, created := range tt.remap {
				remap.Record(src, created)
			}

			tr := NewTranslator(schema, "owner", "repo", "").Translate(tt.row, remap)

			assert.Equal(t, tt.expectedKind, tr.Kind)
			assert.Equal(t, tt.expectedSkip, tr.Skip)
			assert.Equal(t, tt.expectedReason, tr.SkipReason)
			if tt.expectedKind == CommentRow && !tt.expectedSkip {
				assert.Equal(t, tt.expected, tr.Comment)
			}
		})
	}
}

func TestParseIssueNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"5", 5},
		{"#12", 12},
		{"", 0},
		{"abc", 0},
		{"-3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseIssueNumber(tt.input))
		})
	}
}

func TestRemapTable(t *testing.T) {
	remap := NewRemapTable()
	remap.Record(5, 100)
	remap.Record(6, 101)
	remap.Record(5, 102)

	got, ok := remap.Lookup(5)
	assert.True(t, ok)
	assert.Equal(t, 102, got)

	_, ok = remap.Lookup(7)
	assert.False(t, ok)
	assert.Equal(t, 2, remap.Len())
}
