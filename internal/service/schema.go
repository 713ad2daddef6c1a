package service

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Field is a semantic column the importer understands
type Field int

const (
	FieldNumber Field = iota
	FieldTitle
	FieldBody
	FieldLabels
	FieldMilestone
	FieldAssignee
	FieldState
	FieldCommentUser
	FieldCommentCreatedAt
	FieldCommentBody
	fieldCount
)

// Absent is the position of a column missing from the header
const Absent = -1

// SchemaKind selects between the issue-only and the issue+comment layouts
type SchemaKind int

const (
	// SchemaSimple has one issue per row and unprefixed column names
	SchemaSimple SchemaKind = iota
	// SchemaThreaded interleaves issue rows and comment rows using issue.* and comment.* columns
	SchemaThreaded
)

func (k SchemaKind) String() string {
	if k == SchemaThreaded {
		return "threaded"
	}
	return "simple"
}

var simpleColumns = [fieldCount]string{
	FieldNumber:           "number",
	FieldTitle:            "title",
	FieldBody:             "body",
	FieldLabels:           "labels",
	FieldMilestone:        "milestone",
	FieldAssignee:         "assignee",
	FieldState:            "state",
	FieldCommentUser:      "",
	FieldCommentCreatedAt: "",
	FieldCommentBody:      "",
}

var threadedColumns = [fieldCount]string{
	FieldNumber:           "issue.number",
	FieldTitle:            "issue.title",
	FieldBody:             "issue.body",
	FieldLabels:           "issue.labels",
	FieldMilestone:        "issue.milestone",
	FieldAssignee:         "issue.assignee",
	FieldState:            "issue.state",
	FieldCommentUser:      "comment.user",
	FieldCommentCreatedAt: "comment.created_at",
	FieldCommentBody:      "comment.body",
}

// ErrMissingColumn is returned when a mandatory column is not in the header
var ErrMissingColumn = errors.New("required column missing")

// Schema maps each field to a column position, computed once from the header
type Schema struct {
	Kind      SchemaKind
	positions [fieldCount]int
}

// ResolveHeader detects the schema from the header row and locates every field.
// Column names are matched case-insensitively; the first occurrence wins.
func ResolveHeader(header []string) (Schema, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	schema := Schema{Kind: SchemaSimple}
	names := simpleColumns
	if _, ok := index[threadedColumns[FieldTitle]]; ok {
		schema.Kind = SchemaThreaded
		names = threadedColumns
	}

	for f := Field(0); f < fieldCount; f++ {
		schema.positions[f] = Absent
		if names[f] == "" {
			continue
		}
		if pos, ok := index[names[f]]; ok {
			schema.positions[f] = pos
		}
	}

	if !schema.Has(FieldTitle) {
		return Schema{}, errors.WithHint(
			errors.Wrapf(ErrMissingColumn, "%q", names[FieldTitle]),
			"GitHub requires a title for every issue; add a title column to the CSV header",
		)
	}
	if schema.Kind == SchemaThreaded && !schema.Has(FieldNumber) {
		return Schema{}, errors.WithHint(
			errors.Wrapf(ErrMissingColumn, "%q", names[FieldNumber]),
			"comment rows are matched to issues by issue.number",
		)
	}
	return schema, nil
}

// Position returns the column index of f, or Absent
func (s Schema) Position(f Field) int {
	return s.positions[f]
}

// Has reports whether f resolved to a column
func (s Schema) Has(f Field) bool {
	return s.positions[f] != Absent
}

// Cell returns the value of f in row, or "" when the column is absent or the row is short
func (s Schema) Cell(row []string, f Field) string {
	pos := s.positions[f]
	if pos == Absent || pos >= len(row) {
		return ""
	}
	return row[pos]
}
