package core

import (
	"errors"
	"testing"
)

func TestExtractTextRejectsGarbage(t *testing.T) {
	svc := NewPDFService()

	cases := map[string][]byte{
		"empty":        nil,
		"plain text":   []byte("this is not a pdf"),
		"broken magic": []byte("%PDF-1.7 but nothing else"),
	}
	for name, data := range cases {
		if _, err := svc.ExtractText(data); !errors.Is(err, ErrUnparsableDocument) {
			t.Errorf("%s: expected ErrUnparsableDocument, got %v", name, err)
		}
	}
}
