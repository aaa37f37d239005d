package cli

import (
	"context"
	"fmt"

	"careermatch/internal/ai"
	"careermatch/internal/common"
	"careermatch/internal/extract"
	"careermatch/internal/fit"
	"careermatch/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [cv-file] [job-description-file]",
	Short: "Analyze how well a CV fits a job posting",
	Long: `Analyze a CV against a job description and produce a fit report.
The command takes two arguments: the path to your CV (plain text or PDF) and
the path to the job description file.

The report includes:
- A 0-100 fit score with a confidence level
- Must-have and nice-to-have requirement matching with CV evidence
- Gaps with concrete fixes
- An apply/skip decision with a suggested next step
- CV, LinkedIn, and ATS keyword suggestions`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create one AI service per pipeline stage
	fitConfig := cfg.GetFitConfig()
	fitService, err := ai.NewService(&fitConfig, ai.OpFitAnalysis, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = fitService.Close() }()

	suggestConfig := cfg.GetSuggestConfig()
	suggestService, err := ai.NewService(&suggestConfig, ai.OpSuggestions, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() { _ = suggestService.Close() }()

	pipeline := fit.NewPipeline(fitService, suggestService, logger)

	createInput := func(contents []string) (types.AnalyzeInput, error) {
		if len(contents) != 2 {
			return types.AnalyzeInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.AnalyzeInput{
			CVText:  extract.SanitizeWhitespace(contents[0]),
			JobText: extract.SanitizeWhitespace(contents[1]),
		}, nil
	}

	logDetails := func(input types.AnalyzeInput, cfg common.CommandConfig) {
		logger.Info("Starting fit analysis",
			"cv_chars", len(input.CVText),
			"job_chars", len(input.JobText),
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, input types.AnalyzeInput) (*types.CombinedReport, *ai.TokenUsage, error) {
		return pipeline.Analyze(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		createInput,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze fit: %w", err)
	}
	logger.Info("Fit analysis completed successfully")
	return nil
}
