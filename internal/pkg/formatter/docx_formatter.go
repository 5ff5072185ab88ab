package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(sheet AnswerSheet) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	title := doc.AddParagraph()
	title.SetStyle("Heading1")
	title.AddRun().AddText(sheet.Title)

	sub := doc.AddParagraph()
	subRun := sub.AddRun()
	subRun.Properties().SetItalic(true)
	subRun.AddText(sheet.subtitle())

	for _, row := range sheet.Rows {
		q := doc.AddParagraph()
		qRun := q.AddRun()
		qRun.Properties().SetBold(true)
		qRun.AddText(row.QuestionID.String() + ". " + row.Question)

		doc.AddParagraph().AddRun().AddText(row.Answer)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
