package cli

import (
	"fmt"

	"careermatch/internal/common"
	"careermatch/internal/extract"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [job-url]",
	Short: "Fetch a job posting and extract its text",
	Long: `Fetch a public job posting page and extract the description as plain
text. The extracted text can be saved and fed to the analyze command, which is
useful when you want to inspect or edit the posting before running the
analysis.

LinkedIn guest pages are supported; login-walled pages are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var fetchOutputFile string

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutputFile, "output", "o", "", "Output file path (default: stdout)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	fetcher := extract.NewFetcher(cfg.Extract, logger)

	logger.Info("Fetching job posting", "url", args[0])
	posting, err := fetcher.FetchJobPosting(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch job posting: %w", err)
	}

	if posting.Title != "" {
		logger.Info("Job posting fetched",
			"title", posting.Title,
			"chars", len(posting.Text))
	}

	if fetchOutputFile != "" {
		fileProcessor := common.NewFileProcessor(logger)
		if err := fileProcessor.WriteFile(fetchOutputFile, posting.Text); err != nil {
			return err
		}
		logger.Info("Job text written", "file", fetchOutputFile)
		return nil
	}

	fmt.Println(posting.Text)
	return nil
}
