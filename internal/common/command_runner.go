package common

import (
	"context"
	"fmt"
	"os"

	"careermatch/internal/ai"
	"careermatch/internal/errors"
)

// CreateInputFunc builds the pipeline input from the contents of the
// documents named on the command line.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc logs the start of a run with whatever detail fits the input.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// AIOperationFunc is the pipeline call a command delegates to.
type AIOperationFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, error)

// RunAICommand drives a document-based CLI command: read the input files,
// build the pipeline input, run the operation, report token usage, and hand
// the result to the output handler.
func RunAICommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	aiOperation AIOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, tokenUsage, err := aiOperation(ctx, input)
	if err != nil {
		return err
	}

	reportTokenUsage(logger, tokenUsage)

	return outputHandler.HandleOutput(result, cmdConfig)
}

func reportTokenUsage(logger *errors.Logger, usage *ai.TokenUsage) {
	if usage == nil {
		return
	}
	if logger != nil {
		logger.Info("AI token usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
		return
	}
	fmt.Fprintf(os.Stderr, "AI token usage: input=%d, output=%d, total=%d\n",
		usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
}
