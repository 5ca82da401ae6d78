package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/richat-partners/staffing-api/internal/domain"
	"github.com/richat-partners/staffing-api/internal/skillminer"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine [FILE]",
	Short: "Mine catalog skills and the primary domain from a text or CV file",
	Long: "Mine catalog skills from a plain text file, from stdin when FILE is omitted or \"-\", " +
		"or from a PDF/DOC/DOCX CV which is extracted first.",
	Args: cobra.MaximumNArgs(1),
	RunE: runMine,
}

var (
	mineOutputFile string
	mineDomainHint string
)

func init() {
	mineCmd.Flags().StringVarP(&mineOutputFile, "out", "o", "", "Output JSON file (default stdout)")
	mineCmd.Flags().StringVar(&mineDomainHint, "domain", "", "Fallback domain when no skill matches (Digital, Finance, Energy, Industry)")

	rootCmd.AddCommand(mineCmd)
}

func runMine(_ *cobra.Command, args []string) error {
	var hint *domain.Domain
	if mineDomainHint != "" {
		d := domain.Domain(mineDomainHint)
		if !d.IsValid() {
			return fmt.Errorf("unknown domain %q", mineDomainHint)
		}
		hint = &d
	}

	text, err := mineInput(args)
	if err != nil {
		return err
	}

	return writeJSON(mineOutputFile, skillminer.Mine(text, hint))
}

func mineInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	path := args[0]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".doc", ".docx":
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		parsed, err := extractFile(ctx, path, logger)
		if err != nil {
			return "", err
		}
		return parsed.Text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
