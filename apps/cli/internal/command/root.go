// Package command implements the repotext command line.
package command

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tilsley/repotext/pkg/ingest"
	"github.com/tilsley/repotext/pkg/ingest/adapters"
	"github.com/tilsley/repotext/pkg/logging"
)

const (
	sourceWeb = "web"
	sourceAPI = "api"
)

type options struct {
	includeExt []string
	excludeExt []string
	excludeDir []string
	json       bool
	source     string
	baseURL    string
	apiURL     string
	noProgress bool
	timeout    time.Duration
}

// New builds the root command. Rendered output goes to stdout; progress and
// logs go to stderr.
func New(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "repotext <owner>/<repo>[/<branch>]",
		Short: "Print the files of a GitHub branch as one text document",
		Long: `Downloads the branch archive of a GitHub repository, filters its files by
extension and directory, and prints them as concatenated text or as a JSON
object mapping path to content. The branch defaults to main.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringSliceVar(&opts.includeExt, "include-ext", nil, "Only keep files with these extensions (comma-separated, no dot)")
	f.StringSliceVar(&opts.excludeExt, "exclude-ext", nil, "Drop files with these extensions")
	f.StringSliceVar(&opts.excludeDir, "exclude-dir", nil, "Drop files under directories with these names")
	f.BoolVar(&opts.json, "json", false, "Print a JSON object instead of concatenated text")
	f.StringVar(&opts.source, "source", sourceWeb, "Archive source: web (branch download) or api (REST zipball)")
	f.StringVar(&opts.baseURL, "base-url", adapters.DefaultArchiveURL, "Base URL for branch downloads")
	f.StringVar(&opts.apiURL, "api-url", "", "GitHub REST API base URL (default https://api.github.com)")
	f.BoolVar(&opts.noProgress, "no-progress", false, "Do not draw a download progress bar")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall download timeout")

	return cmd
}

func run(cmd *cobra.Command, target string, opts *options, stdout, stderr io.Writer) error {
	owner, repo, branch, err := parseTarget(target)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(opts)
	if err != nil {
		return err
	}
	if !opts.noProgress {
		fetcher = &progressFetcher{next: fetcher, out: stderr}
	}

	req := ingest.ArchiveRequest{
		Owner:      owner,
		Repo:       repo,
		Branch:     branch,
		IncludeExt: flagList(cmd, "include-ext", opts.includeExt),
		ExcludeExt: flagList(cmd, "exclude-ext", opts.excludeExt),
		ExcludeDir: flagList(cmd, "exclude-dir", opts.excludeDir),
	}

	svc := ingest.NewService(fetcher, logging.NewWithWriter(stderr))
	res, err := svc.Ingest(cmd.Context(), req)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(res.Document())
	}
	if text := res.Text(); text != "" {
		_, err = fmt.Fprintln(stdout, text)
	}
	return err
}

func newFetcher(opts *options) (ingest.ArchiveFetcher, error) {
	httpClient := &http.Client{Timeout: opts.timeout}
	switch opts.source {
	case sourceWeb:
		return adapters.NewArchiveClient(opts.baseURL, httpClient), nil
	case sourceAPI:
		return adapters.NewAPIClient(adapters.NewGitHubClient(opts.apiURL, httpClient)), nil
	default:
		return nil, fmt.Errorf("unknown source %q: want %s or %s", opts.source, sourceWeb, sourceAPI)
	}
}

// flagList returns nil for a flag that was never given so the predicate stays
// disabled. A flag given as --include-ext= yields [""].
func flagList(cmd *cobra.Command, name string, vals []string) []string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	if len(vals) == 0 {
		return []string{""}
	}
	return vals
}

// parseTarget splits "owner/repo[/branch]". Everything after the repository
// is the branch, so branch names may contain slashes.
func parseTarget(target string) (owner, repo, branch string, err error) {
	parts := strings.SplitN(strings.Trim(target, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("target %q: want <owner>/<repo>[/<branch>]", target)
	}
	owner, repo = parts[0], parts[1]
	if len(parts) == 3 {
		branch = parts[2]
	}
	if branch == "" {
		branch = ingest.DefaultBranch
	}
	return owner, repo, branch, nil
}
