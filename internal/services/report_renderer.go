package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/models"
)

const analysisPreviewLines = 20

type ReportRenderer interface {
	Render(content models.ReportContent, format models.ReportFormat) ([]byte, error)
}

type reportRenderer struct {
	log *zap.Logger
}

func NewReportRenderer(log *zap.Logger) ReportRenderer {
	return &reportRenderer{log: log.Named("renderer")}
}

// Render implements ReportRenderer.
func (r *reportRenderer) Render(content models.ReportContent, format models.ReportFormat) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case models.ReportFormatPDF, "":
		data, err = renderPDF(content)
	case models.ReportFormatXLSX:
		data, err = renderXLSX(content)
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return nil, err
	}

	r.log.Info("report rendered",
		zap.String("process_id", content.ProcessID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

type rgb struct{ r, g, b int }

var (
	colorTitle = rgb{30, 64, 175}
	colorText  = rgb{31, 41, 55}
	colorMuted = rgb{107, 114, 128}
	colorGood  = rgb{16, 185, 129}
	colorFair  = rgb{245, 158, 11}
	colorPoor  = rgb{239, 68, 68}
)

func matchColor(pct int) rgb {
	switch {
	case pct >= 70:
		return colorGood
	case pct >= 50:
		return colorFair
	default:
		return colorPoor
	}
}

type pdfWriter struct {
	doc *fpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) color(c rgb) {
	w.doc.SetTextColor(c.r, c.g, c.b)
}

func (w *pdfWriter) heading(text string) {
	w.doc.Ln(4)
	w.doc.SetFont("Helvetica", "B", 14)
	w.color(colorTitle)
	w.doc.CellFormat(0, 8, w.tr(text), "", 1, "L", false, 0, "")
	w.doc.Ln(1)
}

func (w *pdfWriter) paragraph(text string) {
	w.doc.SetFont("Helvetica", "", 11)
	w.color(colorText)
	w.doc.MultiCell(0, 6, w.tr(text), "", "L", false)
}

func (w *pdfWriter) bullets(items []string) {
	w.doc.SetFont("Helvetica", "", 11)
	w.color(colorText)
	for _, item := range items {
		w.doc.MultiCell(0, 6, w.tr("• "+item), "", "L", false)
	}
}

func renderPDF(content models.ReportContent) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.SetTitle("Career Analysis Report", true)
	doc.SetCreator("career-assistant", true)

	w := &pdfWriter{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}

	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "I", 8)
		w.color(colorMuted)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	result := content.Result

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 22)
	w.color(colorTitle)
	doc.CellFormat(0, 12, w.tr("Career Analysis Report"), "", 1, "C", false, 0, "")
	if content.ProcessID != "" {
		doc.SetFont("Helvetica", "", 9)
		w.color(colorMuted)
		doc.CellFormat(0, 6, w.tr("Process "+content.ProcessID), "", 1, "C", false, 0, "")
	}

	w.heading("Match Percentage")
	doc.SetFont("Helvetica", "B", 28)
	w.color(matchColor(result.MatchPercentage))
	doc.CellFormat(0, 14, fmt.Sprintf("%d%%", result.MatchPercentage), "", 1, "L", false, 0, "")

	w.heading("Recommendation")
	w.paragraph(result.Recommendation)

	w.heading("Strengths")
	w.bullets(result.Strengths)

	w.heading("Weaknesses")
	w.bullets(result.Weaknesses)

	doc.AddPage()
	w.heading("4-Week Plan")
	for _, line := range strings.Split(result.FourWeekPlan, "\n") {
		if line = plainLine(line); line != "" {
			w.paragraph(line)
		}
	}

	if considerations := strings.TrimSpace(content.AdditionalConsiderations); considerations != "" {
		w.heading("Additional Considerations")
		w.paragraph(considerations)
	}

	doc.AddPage()
	w.heading("CV Analysis")
	for _, line := range previewLines(content.CVAnalysis, analysisPreviewLines) {
		w.paragraph(line)
	}

	w.heading("Job Offer Analysis")
	for _, line := range previewLines(content.JobOfferAnalysis, analysisPreviewLines) {
		w.paragraph(line)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF report: %w", err)
	}

	return buf.Bytes(), nil
}

func renderXLSX(content models.ReportContent) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const (
		summary  = "Summary"
		plan     = "Plan"
		analyses = "Analyses"
	)

	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}
	for _, sheet := range []string{plan, analyses} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	result := content.Result
	cells := []struct {
		sheet, cell string
		value       interface{}
	}{
		{summary, "A1", "Career Analysis Report"},
		{summary, "A2", "Process"},
		{summary, "B2", content.ProcessID},
		{summary, "A3", "Match percentage"},
		{summary, "B3", result.MatchPercentage},
		{summary, "A4", "Recommendation"},
		{summary, "B4", result.Recommendation},
		{summary, "A5", "Additional considerations"},
		{summary, "B5", content.AdditionalConsiderations},
		{summary, "A7", "Strengths"},
		{summary, "B7", "Weaknesses"},
		{plan, "A1", "4-Week Plan"},
		{analyses, "A1", "CV analysis"},
		{analyses, "B1", "Job offer analysis"},
	}
	for _, c := range cells {
		if err := f.SetCellValue(c.sheet, c.cell, c.value); err != nil {
			return nil, fmt.Errorf("failed to write %s!%s: %w", c.sheet, c.cell, err)
		}
	}

	if err := writeColumn(f, summary, "A", 8, result.Strengths); err != nil {
		return nil, err
	}
	if err := writeColumn(f, summary, "B", 8, result.Weaknesses); err != nil {
		return nil, err
	}
	if err := writeColumn(f, plan, "A", 2, nonEmptyLines(result.FourWeekPlan)); err != nil {
		return nil, err
	}
	if err := writeColumn(f, analyses, "A", 2, nonEmptyLines(content.CVAnalysis)); err != nil {
		return nil, err
	}
	if err := writeColumn(f, analyses, "B", 2, nonEmptyLines(content.JobOfferAnalysis)); err != nil {
		return nil, err
	}

	styles := []struct {
		sheet, from, to string
		style           int
	}{
		{summary, "A1", "A7", bold},
		{summary, "B7", "B7", bold},
		{summary, "B4", "B5", wrap},
		{plan, "A1", "A1", bold},
		{analyses, "A1", "B1", bold},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(s.sheet, s.from, s.to, s.style); err != nil {
			return nil, fmt.Errorf("failed to style %s: %w", s.sheet, err)
		}
	}

	_ = f.SetColWidth(summary, "A", "B", 60)
	_ = f.SetColWidth(plan, "A", "A", 100)
	_ = f.SetColWidth(analyses, "A", "B", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render XLSX report: %w", err)
	}

	return buf.Bytes(), nil
}

func writeColumn(f *excelize.File, sheet, col string, startRow int, values []string) error {
	for i, value := range values {
		cell := fmt.Sprintf("%s%d", col, startRow+i)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = plainLine(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func previewLines(text string, limit int) []string {
	lines := nonEmptyLines(text)
	if len(lines) > limit {
		lines = append(lines[:limit], "...")
	}
	return lines
}

// plainLine strips markdown emphasis and heading markers.
func plainLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#")
	line = strings.ReplaceAll(line, "**", "")
	return strings.TrimSpace(line)
}
