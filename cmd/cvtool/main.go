// Command cvtool runs the CV pipeline offline: extraction, skill mining and standardization.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/richat-partners/staffing-api/internal/cvparser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "cvtool",
	Short: "Offline CV extraction, skill mining and standardization",
	Long: "cvtool runs the consultant CV pipeline on local files without a database: " +
		"extract a PDF/DOC/DOCX into structured JSON, mine skills from text, " +
		"and render the firm-branded standardized CV.",
	SilenceUsage: true,
}

var (
	tikaURL      string
	ocrEnabled   bool
	ocrLanguages string
	minPageChars int
	verbose      bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&tikaURL, "tika-url", os.Getenv("EXTRACTION_TIKAURL"), "Apache Tika server URL used for OCR and DOC conversion")
	rootCmd.PersistentFlags().BoolVar(&ocrEnabled, "ocr", true, "Send image-only PDF pages to OCR (requires --tika-url)")
	rootCmd.PersistentFlags().StringVar(&ocrLanguages, "ocr-languages", "fra+eng", "Tesseract language packs")
	rootCmd.PersistentFlags().IntVar(&minPageChars, "min-page-chars", 0, "Native text length under which a page is OCRed")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline details to stderr")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newExtractor(ctx context.Context, logger *zap.Logger) (*cvparser.Extractor, error) {
	pages, err := cvparser.NewEinoPageExtractor(ctx)
	if err != nil {
		return nil, err
	}
	options := []cvparser.Option{
		cvparser.WithLogger(logger),
		cvparser.WithPageExtractor(pages),
		cvparser.WithMinPageChars(minPageChars),
	}
	if tikaURL != "" {
		tika := cvparser.NewTikaClient(tikaURL, cvparser.WithOCRLanguages(ocrLanguages))
		options = append(options, cvparser.WithDocConverter(tika))
		if ocrEnabled {
			options = append(options, cvparser.WithOCREngine(tika))
		}
	}
	return cvparser.NewExtractor(options...), nil
}

// extractFile reads path and runs it through the extractor.
// Format errors still yield the empty record next to the error.
func extractFile(ctx context.Context, path string, logger *zap.Logger) (*cvparser.ParsedCV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	extractor, err := newExtractor(ctx, logger)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(ctx, filepath.Base(path), data)
}

// writeJSON writes v indented to path, or to stdout when path is empty or "-"
func writeJSON(path string, v interface{}) error {
	var out io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
