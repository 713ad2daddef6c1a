package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/cockroachdb/errors"
	"github.com/ryo246912/gh-issue-csv/internal/config"
	"github.com/ryo246912/gh-issue-csv/internal/csvio"
	"github.com/ryo246912/gh-issue-csv/internal/github"
	"github.com/ryo246912/gh-issue-csv/internal/logger"
	"github.com/ryo246912/gh-issue-csv/internal/pacer"
	"github.com/ryo246912/gh-issue-csv/internal/service"
	"github.com/ryo246912/gh-issue-csv/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// envFile is read from the working directory when present
const envFile = ".env"

// RepositoryAdapter adapts a resolved owner/name pair to our interface
type RepositoryAdapter struct {
	Owner string
	Name  string
	Host  string
}

func (r *RepositoryAdapter) GetOwner() string {
	return r.Owner
}

func (r *RepositoryAdapter) GetName() string {
	return r.Name
}

// resolveRepository fills owner and repo from config, then the current git
// repository, then interactive prompts
func resolveRepository(cfg *config.Config, current func() (repository.Repository, error), prompter ui.Prompter) (*RepositoryAdapter, error) {
	repo := &RepositoryAdapter{Owner: cfg.Owner, Name: cfg.Repo, Host: cfg.Hostname}

	if repo.Owner == "" || repo.Name == "" {
		if cur, err := current(); err == nil {
			if repo.Owner == "" && repo.Name == "" {
				repo.Owner, repo.Name = cur.Owner, cur.Name
			} else if repo.Owner == "" {
				repo.Owner = cur.Owner
			} else {
				repo.Name = cur.Name
			}
			if repo.Host == "" {
				repo.Host = cur.Host
			}
		}
	}

	var err error
	if repo.Owner == "" {
		if repo.Owner, err = prompter.PromptOwner(); err != nil {
			return nil, errors.Wrap(err, "failed to get user or organization")
		}
	}
	if repo.Name == "" {
		if repo.Name, err = prompter.PromptRepo(); err != nil {
			return nil, errors.Wrap(err, "failed to get repository")
		}
	}
	return repo, nil
}

// setup loads configuration and builds the logger, repository and client shared by subcommands
func setup(cmd *cobra.Command) (*config.Config, *zap.SugaredLogger, *RepositoryAdapter, *github.Client, error) {
	cfg, err := config.Load(cmd.Flags(), envFile)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	log, err := logger.New(cfg.Verbose, cfg.LogJSON)
	if err != nil {
		return nil, nil, nil, nil, errors.Wrap(err, "failed to create logger")
	}

	repo, err := resolveRepository(cfg, repository.Current, &ui.DefaultPrompter{})
	if err != nil {
		return nil, nil, nil, nil, err
	}

	client, err := github.NewClient(api.ClientOptions{
		Host:      repo.Host,
		AuthToken: cfg.Token,
	}, log, pacer.RealClock{})
	if err != nil {
		return nil, nil, nil, nil, errors.Wrap(err, "failed to create GitHub client")
	}
	return cfg, log, repo, client, nil
}

// checkImport resolves the header of rows before asking the user to confirm,
// so a malformed file fails without a prompt
func checkImport(rows service.RowSource, file string, repo *RepositoryAdapter, skipConfirm bool, prompter ui.Prompter) (service.Schema, bool, error) {
	schema, err := service.ReadHeader(rows)
	if err != nil {
		return service.Schema{}, false, errors.Wrapf(err, "failed to read header of %s", file)
	}
	if skipConfirm {
		return schema, true, nil
	}

	confirmed, err := prompter.ConfirmImport(file, repo.Owner, repo.Name)
	if err != nil {
		return service.Schema{}, false, err
	}
	return schema, confirmed, nil
}

func runImport(cmd *cobra.Command, file string) error {
	cfg, log, repo, client, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	f, err := os.Open(file)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", file)
	}
	defer f.Close()

	rows := csvio.NewReader(f)
	schema, confirmed, err := checkImport(rows, file, repo, cfg.Yes, &ui.DefaultPrompter{})
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Import cancelled")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := pacer.New(cfg.Pause(), pacer.RealClock{})
	log.Infow("Starting import", "file", file, "owner", repo.Owner, "repo", repo.Name, "pause", p.Pause().String())
	importService := service.NewImportService(client, repo, p, log, cfg.SourceURL)

	summary, err := importService.Run(ctx, schema, rows)
	if err == nil || summary.Rows > 0 {
		fmt.Print(ui.FormatSummary(summary))
	}
	return err
}

func runExport(cmd *cobra.Command) error {
	cfg, log, repo, client, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	path := cfg.File
	if path == "" {
		path = repo.Name + "-issues.csv"
	}

	var out io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", path)
		}
		defer f.Close()
		out = f
	}

	exportService := service.NewExportService(client, repo, log)
	count, err := exportService.Export(cmd.Context(), csvio.NewWriter(out), service.ExportOptions{
		Comments:   cfg.Comments,
		All:        cfg.All,
		Attributes: cfg.Attributes,
	})
	if err != nil {
		return err
	}

	if path != "-" {
		fmt.Printf("Exported %d issues to %s\n", count, path)
	}
	return nil
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "issue-csv",
		Short:         "Import and export GitHub issues and comments as CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("owner", "o", "", "The user or organization the repository lives under")
	root.PersistentFlags().StringP("repo", "r", "", "The repository name")
	root.PersistentFlags().String("hostname", "", "GitHub Enterprise host name")
	root.PersistentFlags().StringP("token", "t", "", "GitHub token (defaults to gh auth)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Include additional logging information")
	root.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create issues and comments from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0])
		},
	}
	importCmd.Flags().StringP("source", "s", "", "URL of the repository the issues were exported from")
	importCmd.Flags().IntP("pause", "p", config.DefaultPauseMS, "Milliseconds to pause after each issue or comment")
	importCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write all issues of a repository to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd)
		},
	}
	exportCmd.Flags().StringP("file", "f", "", "Output file, - for stdout (default <repo>-issues.csv)")
	exportCmd.Flags().BoolP("comments", "c", false, "Include comments in the export")
	exportCmd.Flags().StringSliceP("attributes", "a", nil, "Comma-separated list of columns to export, in order")
	exportCmd.Flags().BoolP("all", "e", false, "Also export the author and creation time of each issue")

	root.AddCommand(importCmd, exportCmd)
	return root
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
