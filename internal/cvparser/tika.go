package cvparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// OCREngine recognizes the text of every page of a scanned PDF
type OCREngine interface {
	OCRPages(ctx context.Context, uri string, data []byte) ([]string, error)
}

// DocConverter extracts plain text from office documents
type DocConverter interface {
	ConvertToText(ctx context.Context, uri, contentType string, data []byte) (string, error)
}

// TikaClient talks to an Apache Tika server. It serves both as OCR engine (Tesseract behind
// Tika) and as converter for legacy Word documents.
type TikaClient struct {
	serverURL string
	client    *http.Client
	languages string
	dpi       int
}

// TikaOption configures a TikaClient
type TikaOption func(*TikaClient)

// WithOCRLanguages sets the Tesseract language packs, e.g. "fra+eng"
func WithOCRLanguages(languages string) TikaOption {
	return func(c *TikaClient) {
		c.languages = languages
	}
}

// WithOCRDPI sets the rendering resolution used before OCR
func WithOCRDPI(dpi int) TikaOption {
	return func(c *TikaClient) {
		c.dpi = dpi
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) TikaOption {
	return func(c *TikaClient) {
		c.client.Timeout = timeout
	}
}

// NewTikaClient creates a client for the Tika server at serverURL, e.g. http://localhost:9998
func NewTikaClient(serverURL string, options ...TikaOption) *TikaClient {
	c := &TikaClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    &http.Client{Timeout: 120 * time.Second},
		languages: "fra+eng",
		dpi:       300,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

var (
	_ OCREngine    = (*TikaClient)(nil)
	_ DocConverter = (*TikaClient)(nil)
)

// OCRPages renders every page and runs OCR on it, returning one string per page
func (c *TikaClient) OCRPages(ctx context.Context, uri string, data []byte) ([]string, error) {
	headers := map[string]string{
		"Content-Type":                       "application/pdf",
		"Accept":                             "text/html",
		"X-Tika-PDFOcrStrategy":              "ocr_only",
		"X-Tika-OCRLanguage":                 c.languages,
		"X-Tika-PDFOcrDPI":                   strconv.Itoa(c.dpi),
		"X-Tika-OCREnableImagePreprocessing": "true",
	}
	body, err := c.put(ctx, uri, data, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tika XHTML for %s: %w", uri, err)
	}
	var pages []string
	doc.Find("div.page").Each(func(_ int, s *goquery.Selection) {
		pages = append(pages, pageText(s))
	})
	if len(pages) == 0 {
		pages = append(pages, pageText(doc.Find("body")))
	}
	return pages, nil
}

// pageText keeps one line per block element
func pageText(s *goquery.Selection) string {
	blocks := s.Find("p, h1, h2, h3, h4, li, td")
	if blocks.Length() == 0 {
		return strings.TrimSpace(s.Text())
	}
	lines := make([]string, 0, blocks.Length())
	blocks.Each(func(_ int, b *goquery.Selection) {
		if t := strings.TrimSpace(b.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	return strings.Join(lines, "\n")
}

// ConvertToText extracts plain text from a document of the given content type
func (c *TikaClient) ConvertToText(ctx context.Context, uri, contentType string, data []byte) (string, error) {
	body, err := c.put(ctx, uri, data, map[string]string{
		"Content-Type": contentType,
		"Accept":       "text/plain; charset=UTF-8",
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	text, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read tika response for %s: %w", uri, err)
	}
	return string(text), nil
}

func (c *TikaClient) put(ctx context.Context, uri string, data []byte, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.serverURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create tika request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tika request failed for %s: %w", uri, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("tika returned status %d for %s", resp.StatusCode, uri)
	}
	return resp.Body, nil
}
