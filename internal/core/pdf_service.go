package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor linearizes the page text of an uploaded document into a
// single string. Content is untrusted; size and time bounds are the
// caller's responsibility.
type Extractor interface {
	ExtractText(data []byte) (string, error)
}

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExtractText concatenates the plain text of every page.
func (s *PDFService) ExtractText(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs rather than returning
	// an error, so the recover is part of the contract here.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnparsableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparsableDocument, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnparsableDocument, i, err)
		}
		sb.WriteString(content)
	}
	return sb.String(), nil
}
