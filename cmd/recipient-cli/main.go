package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/di"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	pipeline *core.PipelineService,
	normalizer core.Normalizer,
) error {
	defer logger.Sync()

	if flags.ContactsFile == "" {
		return fmt.Errorf("a contact directory is required, pass -contacts <file.json>")
	}

	transcript, err := readTranscript(flags, logger)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Transcript ===\n")
	fmt.Printf("%s\n\n", transcript)

	startTime := time.Now()
	result := pipeline.ProcessTranscript(context.Background(), core.Transcript{
		Text:    transcript,
		IsFinal: true,
	})
	duration := time.Since(startTime)

	fmt.Printf("=== Results ===\n")
	fmt.Printf("Formatted text: %s\n", result.FormattedText)
	if result.Err != "" {
		fmt.Printf("Normalization error: %s\n", result.Err)
	}
	fmt.Printf("Recipient name: %s\n", orNone(result.Recipient.Name))
	fmt.Printf("Recipient organization: %s\n", orNone(result.Recipient.Organization))
	fmt.Printf("Recipient nickname: %s\n", orNone(result.Recipient.Nickname))

	if !result.Resolution.Success {
		fmt.Printf("Resolution failed: %s\n", result.Resolution.Err)
	} else if len(result.Resolution.Contacts) == 0 {
		fmt.Printf("No matching contacts\n")
	} else {
		fmt.Printf("\n=== Matching contacts ===\n")
		for i, contact := range result.Resolution.Contacts {
			fmt.Printf("%d. %s <%s> (score %d)\n", i+1, contact.Name, contact.PrimaryEmail(), contact.Score)
			if contact.Organization != "" {
				fmt.Printf("   %s\n", contact.Organization)
			}
		}
	}
	fmt.Printf("\nProcessing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := normalizer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close normalizer", zap.Error(err))
		}
	}
	return nil
}

func readTranscript(flags *di.CLIFlags, logger *zap.Logger) (string, error) {
	if flags.Transcript != "" {
		return flags.Transcript, nil
	}

	var reader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading transcript from file", zap.String("file", flags.InputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading transcript from stdin")
	}

	data, err := io.ReadAll(bufio.NewReader(reader))
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	transcript := strings.TrimSpace(string(data))
	if transcript == "" {
		return "", fmt.Errorf("empty transcript")
	}
	return transcript, nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
