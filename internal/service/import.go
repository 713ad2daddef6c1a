package service

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/ryo246912/gh-issue-csv/internal/github"
	"go.uber.org/zap"
)

// RowSource yields CSV rows lazily; the first row is the header
type RowSource interface {
	Next() ([]string, error)
	// Line returns the 1-based input line of the last row returned
	Line() int
}

// Waiter paces submissions
type Waiter interface {
	Wait(ctx context.Context) error
}

// ErrEmptyInput is returned when the input has no header row
var ErrEmptyInput = errors.New("input has no header row")

// ImportService creates issues and comments from CSV rows
type ImportService struct {
	client    github.GitHubClient
	repo      github.RepositoryInfo
	pacer     Waiter
	logger    *zap.SugaredLogger
	sourceURL string
}

// NewImportService creates a new import service.
// sourceURL, when set, is quoted in each issue body as the issue's origin.
func NewImportService(client github.GitHubClient, repo github.RepositoryInfo, pacer Waiter, logger *zap.SugaredLogger, sourceURL string) *ImportService {
	return &ImportService{
		client:    client,
		repo:      repo,
		pacer:     pacer,
		logger:    logger,
		sourceURL: sourceURL,
	}
}

// importRun carries the state shared across rows of one import
type importRun struct {
	schema     Schema
	translator *Translator
	remap      *RemapTable
	tally      *Tally
}

// ReadHeader consumes the header row of rows and resolves its schema
func ReadHeader(rows RowSource) (Schema, error) {
	header, err := rows.Next()
	if err == io.EOF {
		return Schema{}, ErrEmptyInput
	}
	if err != nil {
		return Schema{}, err
	}
	return ResolveHeader(header)
}

// Import reads the header, then submits every data row in order.
// Per-row API failures are counted, not returned; only a bad header,
// an unreadable input, or cancellation stop the run.
func (s *ImportService) Import(ctx context.Context, rows RowSource) (Summary, error) {
	schema, err := ReadHeader(rows)
	if err != nil {
		return Summary{}, err
	}
	return s.Run(ctx, schema, rows)
}

// Run submits the data rows remaining in rows under an already resolved schema
func (s *ImportService) Run(ctx context.Context, schema Schema, rows RowSource) (Summary, error) {
	s.logger.Infow("Resolved CSV header", "schema", schema.Kind.String())

	run := &importRun{
		schema:     schema,
		translator: NewTranslator(schema, s.repo.GetOwner(), s.repo.GetName(), s.sourceURL),
		remap:      NewRemapTable(),
		tally:      &Tally{summary: Summary{Schema: schema.Kind}},
	}

	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return run.tally.Snapshot(), err
		}

		if submitted := s.processRow(ctx, run, rows.Line(), row); !submitted {
			continue
		}
		if err := s.pacer.Wait(ctx); err != nil {
			return run.tally.Snapshot(), errors.Wrapf(err, "import interrupted after row %d", rows.Line())
		}
	}

	summary := run.tally.Snapshot()
	s.logger.Infow("Import finished",
		"rows", summary.Rows,
		"skipped", summary.Skipped,
		"remapped", run.remap.Len(),
		"issues_created", summary.Issues.Success,
		"issues_failed", summary.Issues.Failure,
		"comments_created", summary.Comments.Success,
		"comments_failed", summary.Comments.Failure)
	return summary, nil
}

// processRow translates and submits one row. It reports false for rows
// that were skipped without any API call.
func (s *ImportService) processRow(ctx context.Context, run *importRun, line int, row []string) bool {
	run.tally.row()
	tr := run.translator.Translate(row, run.remap)

	if tr.Kind == CommentRow {
		if tr.Skip {
			run.tally.skip()
			s.logger.Debugw("Skipped comment row", "row", line, "source_issue", tr.SourceNumber, "reason", tr.SkipReason)
			return false
		}
		s.submitComment(ctx, run, line, tr)
		return true
	}

	s.submitIssue(ctx, run, line, tr)
	return true
}

func (s *ImportService) submitIssue(ctx context.Context, run *importRun, line int, tr Translation) {
	draft := tr.Issue
	s.logger.Debugw("Creating issue", "row", line, "title", draft.Title, "labels", draft.Labels, "assignees", draft.Assignees, "close", draft.Close)

	result, err := s.client.CreateIssue(ctx, draft)
	switch {
	case result.StatusCode != 201:
	case err != nil || result.Number <= 0:
		s.logger.Warnw("Issue created but its number is unknown; not linking comments or closing it", "row", line, "title", draft.Title, "error", err)
	default:
		created := result.Number
		if run.schema.Kind == SchemaThreaded {
			if tr.SourceNumber > 0 {
				run.remap.Record(tr.SourceNumber, created)
			} else {
				s.logger.Warnw("Issue number is not numeric; its comments cannot be linked", "row", line, "issue", created)
			}
		}
		if draft.Close {
			result, err = s.client.UpdateIssueState(ctx, draft.Owner, draft.Repo, created, "closed")
		}
	}

	run.tally.issue(result.OK())
	if !result.OK() {
		s.logger.Warnw("Failed to import issue", "row", line, "title", draft.Title, "status", result.StatusCode, "error", err)
		return
	}
	s.logger.Infow("Imported issue", "row", line, "source_issue", tr.SourceNumber, "issue", result.Number, "status", result.StatusCode)
}

func (s *ImportService) submitComment(ctx context.Context, run *importRun, line int, tr Translation) {
	result, err := s.client.CreateComment(ctx, tr.Comment)

	run.tally.comment(result.OK())
	if !result.OK() {
		s.logger.Warnw("Failed to import comment", "row", line, "issue", tr.Comment.IssueNumber, "status", result.StatusCode, "error", err)
		return
	}
	s.logger.Infow("Imported comment", "row", line, "source_issue", tr.SourceNumber, "issue", tr.Comment.IssueNumber)
}
