package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ryo246912/gh-issue-csv/internal/github"
	"github.com/ryo246912/gh-issue-csv/internal/models"
	"go.uber.org/zap"
)

// ErrUnknownAttribute is returned when an export attribute names no column
var ErrUnknownAttribute = errors.New("unknown export attribute")

// RowWriter receives exported rows
type RowWriter interface {
	WriteHeader(columns []string) error
	Write(row []string) error
	Flush() error
	Rows() int
}

// ExportOptions selects what an export writes
type ExportOptions struct {
	// Comments writes the threaded schema with one row per comment
	Comments bool
	// All adds the author and creation time of each issue
	All bool
	// Attributes restricts and orders the columns; empty means every column
	Attributes []string
}

// ExportService writes a repository's issues as CSV the importer can read back
type ExportService struct {
	client github.GitHubClient
	repo   github.RepositoryInfo
	logger *zap.SugaredLogger
}

// NewExportService creates a new export service
func NewExportService(client github.GitHubClient, repo github.RepositoryInfo, logger *zap.SugaredLogger) *ExportService {
	return &ExportService{
		client: client,
		repo:   repo,
		logger: logger,
	}
}

// exportColumn renders one CSV column; c is nil on an issue row
type exportColumn struct {
	name  string
	value func(issue models.Issue, c *models.Comment) string
}

func issueValue(f func(models.Issue) string) func(models.Issue, *models.Comment) string {
	return func(issue models.Issue, _ *models.Comment) string { return f(issue) }
}

func commentValue(f func(models.Comment) string) func(models.Issue, *models.Comment) string {
	return func(_ models.Issue, c *models.Comment) string {
		if c == nil {
			return ""
		}
		return f(*c)
	}
}

var fieldValues = [fieldCount]func(models.Issue, *models.Comment) string{
	FieldNumber:           issueValue(func(i models.Issue) string { return strconv.Itoa(i.Number) }),
	FieldTitle:            issueValue(func(i models.Issue) string { return i.Title }),
	FieldBody:             issueValue(func(i models.Issue) string { return i.Body }),
	FieldLabels:           issueValue(func(i models.Issue) string { return strings.Join(i.Labels, ",") }),
	FieldMilestone:        issueValue(func(i models.Issue) string { return i.Milestone }),
	FieldAssignee:         issueValue(func(i models.Issue) string { return strings.Join(i.Assignees, ",") }),
	FieldState:            issueValue(func(i models.Issue) string { return i.State }),
	FieldCommentUser:      commentValue(func(c models.Comment) string { return c.User }),
	FieldCommentCreatedAt: commentValue(func(c models.Comment) string { return c.CreatedAt }),
	FieldCommentBody:      commentValue(func(c models.Comment) string { return c.Body }),
}

// exportColumns lists the columns of kind, plus author and creation time with all.
// The extra columns are not read back by the importer.
func exportColumns(kind SchemaKind, all bool) []exportColumn {
	names := simpleColumns
	prefix := ""
	if kind == SchemaThreaded {
		names = threadedColumns
		prefix = "issue."
	}

	var cols []exportColumn
	for f := Field(0); f < fieldCount; f++ {
		if names[f] == "" {
			continue
		}
		cols = append(cols, exportColumn{name: names[f], value: fieldValues[f]})
		if all && f == FieldState {
			cols = append(cols,
				exportColumn{name: prefix + "author", value: issueValue(func(i models.Issue) string { return i.User })},
				exportColumn{name: prefix + "created_at", value: issueValue(func(i models.Issue) string { return i.CreatedAt })},
			)
		}
	}
	return cols
}

// selectColumns projects cols onto attributes in the order given.
// An attribute matches a column by name, or by the name without its "issue." prefix.
func selectColumns(cols []exportColumn, attributes []string) ([]exportColumn, error) {
	if len(attributes) == 0 {
		return cols, nil
	}

	selected := make([]exportColumn, 0, len(attributes))
	for _, attr := range attributes {
		name := strings.ToLower(strings.TrimSpace(attr))
		if name == "" {
			continue
		}
		found := false
		for _, col := range cols {
			if col.name == name || strings.TrimPrefix(col.name, "issue.") == name {
				selected = append(selected, col)
				found = true
				break
			}
		}
		if !found {
			available := make([]string, len(cols))
			for i, col := range cols {
				available[i] = col.name
			}
			return nil, errors.WithHintf(
				errors.Wrapf(ErrUnknownAttribute, "%q", attr),
				"available columns: %s", strings.Join(available, ", "),
			)
		}
	}
	return selected, nil
}

// Export writes every issue, and with opts.Comments every comment, to w.
// It returns the number of issues exported.
func (s *ExportService) Export(ctx context.Context, w RowWriter, opts ExportOptions) (int, error) {
	kind := SchemaSimple
	if opts.Comments {
		kind = SchemaThreaded
	}
	cols, err := selectColumns(exportColumns(kind, opts.All), opts.Attributes)
	if err != nil {
		return 0, err
	}

	issues, err := s.client.ListIssues(ctx, s.repo.GetOwner(), s.repo.GetName(), opts.Comments)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list issues")
	}

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.name
	}
	if err := w.WriteHeader(header); err != nil {
		return 0, err
	}

	comments := 0
	for _, issue := range issues {
		if err := w.Write(renderRow(cols, issue, nil)); err != nil {
			return 0, err
		}
		if kind != SchemaThreaded {
			continue
		}
		for i := range issue.Comments {
			if err := w.Write(renderRow(cols, issue, &issue.Comments[i])); err != nil {
				return 0, err
			}
			comments++
		}
	}

	if err := w.Flush(); err != nil {
		return 0, err
	}
	s.logger.Infow("Exported issues", "issues", len(issues), "comments", comments, "rows", w.Rows(), "schema", kind.String())
	return len(issues), nil
}

func renderRow(cols []exportColumn, issue models.Issue, c *models.Comment) []string {
	row := make([]string, len(cols))
	for i, col := range cols {
		row[i] = col.value(issue, c)
	}
	return row
}
