package pdftext

import "testing"

func TestExtractRejectsGarbage(t *testing.T) {
	if _, err := Extract([]byte("this is not a pdf")); err == nil {
		t.Error("expected error for non-PDF bytes")
	}
}

func TestExtractRejectsEmpty(t *testing.T) {
	if _, err := Extract(nil); err == nil {
		t.Error("expected error for empty input")
	}
}
