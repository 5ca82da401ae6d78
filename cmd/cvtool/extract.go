package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract a CV file into structured JSON",
	Long:  "Extract a PDF, DOC or DOCX CV into the structured record used by the API, with the inferred consultant signals.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractOutputFile string
	extractTimeout    time.Duration
)

func init() {
	extractCmd.Flags().StringVarP(&extractOutputFile, "out", "o", "", "Output JSON file (default stdout)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 3*time.Minute, "Maximum extraction time")

	rootCmd.AddCommand(extractCmd)
}

type extractOutput struct {
	Parsed  *cvparser.ParsedCV `json:"parsed"`
	Signals cvparser.Signals   `json:"signals"`
	Error   string             `json:"error,omitempty"`
}

func runExtract(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	parsed, err := extractFile(ctx, args[0], logger)
	out := extractOutput{Parsed: parsed}

	var extractionErr *cvparser.ExtractionError
	switch {
	case err == nil:
	case errors.As(err, &extractionErr) && parsed != nil:
		// unsupported or unreadable input still produces the empty record
		out.Error = err.Error()
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	default:
		return err
	}

	out.Signals = cvparser.DeriveSignals(out.Parsed, time.Now())
	return writeJSON(extractOutputFile, out)
}
