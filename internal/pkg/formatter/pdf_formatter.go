package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	pdfFontName = "DejaVuSans"

	// Runtime layout (Docker image copies fonts to ./ttf) first, then the source tree
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	for _, path := range []string{pdfFontRuntimePath, pdfFontSourcePath} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(sheet AnswerSheet) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Without the bundled UTF-8 font, core fonts only cover cp1252
	fontName := "Arial"
	encode := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
		encode = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 16)
	pdf.MultiCell(0, 8, encode(sheet.Title), "", "", false)
	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 6, encode(sheet.subtitle()), "", "", false)
	pdf.Ln(4)

	for _, row := range sheet.Rows {
		pdf.SetFont(fontName, "B", 11)
		pdf.MultiCell(0, 6, encode(fmt.Sprintf("%s. %s", row.QuestionID, row.Question)), "", "", false)
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, 6, encode("    "+row.Answer), "", "", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
