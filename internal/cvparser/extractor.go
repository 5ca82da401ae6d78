package cvparser

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	defaultMinPageChars = 10
	minOCRChars         = 20

	contentTypeDOC  = "application/msword"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor reads CV files. Bad input never panics or fails hard: callers get an empty
// ParsedCV together with an *ExtractionError.
type Extractor struct {
	pages        PageExtractor
	ocr          OCREngine
	docs         DocConverter
	minPageChars int
	logger       *zap.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithPageExtractor sets the native PDF text reader
func WithPageExtractor(p PageExtractor) Option {
	return func(e *Extractor) {
		e.pages = p
	}
}

// WithOCREngine sets the OCR fallback for pages without a text layer
func WithOCREngine(o OCREngine) Option {
	return func(e *Extractor) {
		e.ocr = o
	}
}

// WithDocConverter sets the converter used for legacy .doc files and unreadable .docx files
func WithDocConverter(d DocConverter) Option {
	return func(e *Extractor) {
		e.docs = d
	}
}

// WithMinPageChars sets the length under which a PDF page is sent to OCR
func WithMinPageChars(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minPageChars = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an extractor. Without a page extractor PDFs are OCR-only; without
// OCR engine scanned pages stay empty; without converter .doc files are unsupported.
func NewExtractor(options ...Option) *Extractor {
	e := &Extractor{
		minPageChars: defaultMinPageChars,
		logger:       zap.NewNop(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Extract reads a CV file and parses it. The extension of filename selects the strategy.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (*ParsedCV, error) {
	log := e.logger.With(zap.String("filename", filename), zap.Int("size", len(data)))

	if len(data) == 0 {
		log.Warn("Empty CV file")
		return Empty(), &ExtractionError{Kind: KindUnreadable, Filename: filename, Err: ErrEmptyFile}
	}

	var (
		text string
		info ExtractionInfo
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, info, err = e.extractPDF(ctx, filename, data, log)
	case ".docx":
		text, info, err = e.extractDOCX(ctx, filename, data, log)
	case ".doc":
		if e.docs == nil {
			log.Warn("No converter configured for legacy Word documents")
			return Empty(), &ExtractionError{Kind: KindUnsupported, Filename: filename, Err: ErrUnsupportedFormat}
		}
		text, err = e.docs.ConvertToText(ctx, filename, contentTypeDOC, data)
		info = ExtractionInfo{Method: MethodTika, Pages: 1}
	default:
		log.Warn("Unsupported CV extension")
		return Empty(), &ExtractionError{Kind: KindUnsupported, Filename: filename, Err: ErrUnsupportedFormat}
	}
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrNoText
	}
	if err != nil {
		log.Warn("CV extraction failed", zap.Error(err))
		return Empty(), &ExtractionError{Kind: KindUnreadable, Filename: filename, Err: err}
	}

	parsed := ParseText(text)
	info.Characters = utf8.RuneCountInString(parsed.Text)
	parsed.Extraction = info

	log.Info("CV extracted",
		zap.String("method", info.Method),
		zap.Int("pages", info.Pages),
		zap.Int("ocr_pages", info.OCRPages),
		zap.Int("skills", len(parsed.Skills)),
	)
	return parsed, nil
}

func (e *Extractor) extractPDF(ctx context.Context, filename string, data []byte, log *zap.Logger) (string, ExtractionInfo, error) {
	var pages []string
	if e.pages != nil {
		p, err := e.pages.ExtractPages(ctx, filename, data)
		if err != nil {
			if e.ocr == nil {
				return "", ExtractionInfo{}, err
			}
			log.Warn("Native PDF extraction failed, falling back to OCR", zap.Error(err))
		}
		pages = p
	}

	if len(pages) == 0 {
		if e.ocr == nil {
			return "", ExtractionInfo{}, ErrNoText
		}
		ocrPages, err := e.ocr.OCRPages(ctx, filename, data)
		if err != nil {
			return "", ExtractionInfo{}, err
		}
		return strings.Join(ocrPages, "\n"), ExtractionInfo{Method: MethodOCR, Pages: len(ocrPages), OCRPages: len(ocrPages)}, nil
	}

	info := ExtractionInfo{Method: MethodNative, Pages: len(pages)}
	var ocrPages []string
	ocrLoaded := false
	for i, page := range pages {
		if utf8.RuneCountInString(strings.TrimSpace(page)) >= e.minPageChars || e.ocr == nil {
			continue
		}
		if !ocrLoaded {
			ocrLoaded = true
			var err error
			ocrPages, err = e.ocr.OCRPages(ctx, filename, data)
			if err != nil {
				log.Warn("OCR fallback failed", zap.Error(err))
			}
		}
		if i >= len(ocrPages) {
			continue
		}
		recognized := strings.TrimSpace(ocrPages[i])
		if utf8.RuneCountInString(recognized) < minOCRChars {
			log.Debug("OCR produced little text", zap.Int("page", i+1), zap.Int("chars", utf8.RuneCountInString(recognized)))
		}
		pages[i] = recognized
		info.OCRPages++
	}
	switch {
	case info.OCRPages == len(pages):
		info.Method = MethodOCR
	case info.OCRPages > 0:
		info.Method = MethodMixed
	}
	return strings.Join(pages, "\n"), info, nil
}

func (e *Extractor) extractDOCX(ctx context.Context, filename string, data []byte, log *zap.Logger) (string, ExtractionInfo, error) {
	text, err := readDocx(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, ExtractionInfo{Method: MethodDOCX, Pages: 1}, nil
	}
	if e.docs == nil {
		if err == nil {
			err = ErrNoText
		}
		return "", ExtractionInfo{}, err
	}
	if err != nil {
		log.Warn("Native DOCX reading failed, falling back to converter", zap.Error(err))
	}
	text, err = e.docs.ConvertToText(ctx, filename, contentTypeDOCX, data)
	return text, ExtractionInfo{Method: MethodTika, Pages: 1}, err
}
