package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ryo246912/gh-issue-csv/internal/models"
)

// RowKind tells whether a row creates an issue or a comment
type RowKind int

const (
	IssueRow RowKind = iota
	CommentRow
)

func (k RowKind) String() string {
	if k == CommentRow {
		return "comment"
	}
	return "issue"
}

// Translation is the payload built from one data row
type Translation struct {
	Kind RowKind
	// SourceNumber is the issue number from the input, 0 when missing or not numeric
	SourceNumber int
	Issue        models.IssueDraft
	Comment      models.CommentDraft
	// Skip is set for comment rows that must not be submitted
	Skip       bool
	SkipReason string
}

// Translator turns rows into drafts for a fixed schema and destination
type Translator struct {
	schema    Schema
	owner     string
	repo      string
	sourceURL string
	classify  func(row []string) RowKind
}

// NewTranslator binds the schema variant once; rows are never re-inspected for it
func NewTranslator(schema Schema, owner, repo, sourceURL string) *Translator {
	t := &Translator{
		schema:    schema,
		owner:     owner,
		repo:      repo,
		sourceURL: strings.TrimRight(sourceURL, "/"),
	}
	if schema.Kind == SchemaThreaded {
		t.classify = t.classifyThreaded
	} else {
		t.classify = classifySimple
	}
	return t
}

func classifySimple([]string) RowKind {
	return IssueRow
}

func (t *Translator) classifyThreaded(row []string) RowKind {
	if t.schema.Cell(row, FieldCommentCreatedAt) != "" {
		return CommentRow
	}
	return IssueRow
}

// Translate builds the draft for row. Comment rows are resolved against remap.
// The row is never modified.
func (t *Translator) Translate(row []string, remap *RemapTable) Translation {
	tr := Translation{
		Kind:         t.classify(row),
		SourceNumber: parseIssueNumber(t.schema.Cell(row, FieldNumber)),
	}

	if tr.Kind == CommentRow {
		t.translateComment(row, remap, &tr)
		return tr
	}

	tr.Issue = t.issueDraft(row, tr.SourceNumber)
	return tr
}

func (t *Translator) issueDraft(row []string, sourceNumber int) models.IssueDraft {
	draft := models.IssueDraft{
		Owner: t.owner,
		Repo:  t.repo,
		Title: t.schema.Cell(row, FieldTitle),
	}

	if body := t.schema.Cell(row, FieldBody); body != "" {
		draft.Body = t.withProvenance(body, sourceNumber)
	}
	if labels := t.schema.Cell(row, FieldLabels); labels != "" {
		draft.Labels = splitLabels(labels)
	}
	if milestone := t.schema.Cell(row, FieldMilestone); milestone != "" {
		draft.Milestone = milestone
	}
	if assignees := t.schema.Cell(row, FieldAssignee); assignees != "" {
		draft.Assignees = strings.Split(strings.ReplaceAll(assignees, " ", ""), ",")
	}
	// Only closing is ever requested; issues are created open
	draft.Close = t.schema.Cell(row, FieldState) == "closed"
	return draft
}

func (t *Translator) withProvenance(body string, sourceNumber int) string {
	if t.sourceURL == "" || sourceNumber < 1 {
		return body
	}
	return fmt.Sprintf("This issue was copied from %s/issues/%d\n\n----\n%s", t.sourceURL, sourceNumber, body)
}

func (t *Translator) translateComment(row []string, remap *RemapTable, tr *Translation) {
	target, ok := remap.Lookup(tr.SourceNumber)
	if !ok || tr.SourceNumber == 0 {
		tr.Skip = true
		tr.SkipReason = "issue was not imported"
		return
	}

	body := t.schema.Cell(row, FieldCommentBody)
	if body == "" {
		tr.Skip = true
		tr.SkipReason = "empty comment body"
		return
	}
	if user := t.schema.Cell(row, FieldCommentUser); user != "" {
		body = fmt.Sprintf("Comment from @%s:\n\n%s", user, body)
	}

	tr.Comment = models.CommentDraft{
		Owner:       t.owner,
		Repo:        t.repo,
		IssueNumber: target,
		Body:        body,
	}
}

// splitLabels splits on commas, trimming each name and dropping empty ones
func splitLabels(cell string) []string {
	var labels []string
	for _, l := range strings.Split(cell, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

func parseIssueNumber(cell string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(cell, "#"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
