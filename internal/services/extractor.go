package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/apperror"
)

// Upload is a document received from a client or fetched from a link.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

type DocumentExtractor interface {
	ExtractUpload(ctx context.Context, label string, upload Upload) (string, error)
	ExtractLink(ctx context.Context, label, link string) (string, error)
}

type ExtractorOptions struct {
	FetchTimeout time.Duration
	MaxFileSize  int64
}

type documentKind int

const (
	kindUnknown documentKind = iota
	kindPDF
	kindDOCX
	kindDOC
	kindHTML
	kindText
)

var (
	pdfMagic  = []byte("%PDF")
	zipMagic  = []byte("PK\x03\x04")
	oleMagic  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	docxEntry = []byte("word/document.xml")
)

type documentExtractor struct {
	client      *resty.Client
	maxFileSize int64
	log         *zap.Logger
}

func NewDocumentExtractor(opts ExtractorOptions, log *zap.Logger) DocumentExtractor {
	client := resty.New().
		SetTimeout(opts.FetchTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", "career-assistant/1.0 (+document fetch)")
	if opts.MaxFileSize > 0 {
		client.SetResponseBodyLimit(int(opts.MaxFileSize))
	}

	return &documentExtractor{
		client:      client,
		maxFileSize: opts.MaxFileSize,
		log:         log.Named("extractor"),
	}
}

// ExtractUpload implements DocumentExtractor.
func (e *documentExtractor) ExtractUpload(ctx context.Context, label string, upload Upload) (string, error) {
	if e.maxFileSize > 0 && int64(len(upload.Content)) > e.maxFileSize {
		return "", apperror.UnsupportedFormat(
			fmt.Sprintf("The %s file is too large. Max size: %d bytes.", label, e.maxFileSize), nil)
	}

	kind := detectKind(upload.Filename, upload.ContentType, upload.Content)

	var (
		text string
		err  error
	)
	switch kind {
	case kindPDF:
		text, err = extractPDF(upload.Content)
	case kindDOCX:
		text, err = extractDOCX(upload.Content)
	case kindDOC:
		legacy := apperror.UnsupportedFormat(
			fmt.Sprintf("The %s is a legacy .doc file, which is not supported.", label), nil)
		legacy.Suggestion = "Please convert the document to DOCX, PDF or TXT and upload it again."
		return "", legacy
	case kindHTML:
		text, err = extractHTML(upload.Content)
	case kindText:
		text = decodeText(upload.Content)
	default:
		return "", apperror.UnsupportedFormat(
			fmt.Sprintf("The %s file type is not supported.", label), nil)
	}
	if err != nil {
		return "", apperror.UnsupportedFormat(
			fmt.Sprintf("Could not read the %s file: %v", label, err), err)
	}

	text = CleanText(text)
	if kind == kindPDF && text == "" {
		return "", apperror.UnsupportedFormat(
			fmt.Sprintf("No text could be extracted from the %s PDF. It may be a scanned image.", label), nil)
	}

	e.log.Debug("document extracted",
		zap.String("label", label),
		zap.String("filename", upload.Filename),
		zap.Int("chars", len(text)),
	)

	return text, nil
}

// ExtractLink implements DocumentExtractor.
func (e *documentExtractor) ExtractLink(ctx context.Context, label, link string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", apperror.UpstreamFetch(fmt.Sprintf("The %s link is not a valid http(s) URL.", label), err)
	}

	resp, err := e.client.R().SetContext(ctx).Get(parsed.String())
	if err != nil {
		return "", apperror.UpstreamFetch(fmt.Sprintf("Could not download the %s from the link provided.", label), err)
	}
	if resp.IsError() {
		return "", apperror.UpstreamFetch(
			fmt.Sprintf("Downloading the %s link failed with HTTP status %d.", label, resp.StatusCode()), nil)
	}

	e.log.Info("document fetched",
		zap.String("label", label),
		zap.String("host", parsed.Host),
		zap.Int("bytes", len(resp.Body())),
	)

	return e.ExtractUpload(ctx, label, Upload{
		Filename:    path.Base(parsed.Path),
		ContentType: resp.Header().Get("Content-Type"),
		Content:     resp.Body(),
	})
}

func detectKind(filename, contentType string, content []byte) documentKind {
	switch {
	case bytes.HasPrefix(content, pdfMagic):
		return kindPDF
	case bytes.HasPrefix(content, zipMagic) && bytes.Contains(content, docxEntry):
		return kindDOCX
	case bytes.HasPrefix(content, oleMagic):
		return kindDOC
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case ext == ".pdf" || mediaType == "application/pdf":
		return kindPDF
	case ext == ".docx" || mediaType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return kindDOCX
	case ext == ".doc" || mediaType == "application/msword":
		return kindDOC
	case ext == ".html" || ext == ".htm" || mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return kindHTML
	case ext == ".txt" || mediaType == "text/plain":
		return kindText
	}

	if len(content) == 0 || !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return kindUnknown
	}
	if looksLikeHTML(content) {
		return kindHTML
	}
	return kindText
}

func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype html"))
}

func extractPDF(content []byte) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != string(docxEntry) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document body: %w", err)
		}
		defer rc.Close()
		return readWordXML(rc)
	}

	return "", errors.New("DOCX has no word/document.xml")
}

// readWordXML collects w:t runs, breaking lines at paragraphs and w:br.
func readWordXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var (
		sb     strings.Builder
		inText bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

func extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, head, nav, footer").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td, th, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			lines = append(lines, text)
		}
	})

	if len(lines) == 0 {
		return doc.Find("body").Text(), nil
	}
	return strings.Join(lines, "\n"), nil
}

// decodeText reads UTF-8, falling back to Latin-1 for legacy encodings.
func decodeText(content []byte) string {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if utf8.Valid(content) {
		return string(content)
	}

	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}

// CleanText trims every line and drops empty ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
