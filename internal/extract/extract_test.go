package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Statement of Work for the migration project.</w:t></w:r></w:p>
    <w:p><w:r><w:t>This engagement is a fixed price contract.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Phase</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>End Date</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Build</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>2026-03-31</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractFromBytes_DocxTextAndTables(t *testing.T) {
	data := buildDocx(t, docxBody)

	result, err := ExtractFromBytes(context.Background(), data, mimeDOCX, "sow.docx")
	if err != nil {
		t.Fatalf("ExtractFromBytes: %v", err)
	}

	if !strings.Contains(result.Text, "fixed price contract") {
		t.Errorf("expected paragraph text, got: %q", result.Text)
	}
	if len(result.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(result.Tables))
	}
	table := result.Tables[0]
	if len(table) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table))
	}
	if table[0][0] != "Phase" || table[1][1] != "2026-03-31" {
		t.Errorf("unexpected table cells: %#v", table)
	}
	if result.Metadata.Format != "docx" {
		t.Errorf("expected format docx, got %q", result.Metadata.Format)
	}
	if result.Metadata.TablesFound != 1 {
		t.Errorf("expected tables_found=1, got %d", result.Metadata.TablesFound)
	}
	if result.Metadata.Filename != "sow.docx" {
		t.Errorf("expected filename to pass through, got %q", result.Metadata.Filename)
	}
}

func TestExtractFromBytes_ScannedHeuristic(t *testing.T) {
	data := buildDocx(t, docxBody)

	result, err := ExtractFromBytes(context.Background(), data, mimeDOCX, "sow.docx")
	if err != nil {
		t.Fatalf("ExtractFromBytes: %v", err)
	}
	if result.Metadata.WordCount >= scannedWordThreshold {
		t.Skipf("fixture grew past threshold, word count %d", result.Metadata.WordCount)
	}
	if !result.Metadata.IsScanned {
		t.Errorf("expected is_scanned for %d words", result.Metadata.WordCount)
	}
}

func TestExtractFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildDocx(t, docxBody)

	result, err := ExtractFromBytes(context.Background(), data, "application/zip", "sow.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if result.Metadata.Format != "docx" {
		t.Errorf("expected format docx, got %q", result.Metadata.Format)
	}
}

func TestExtractFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRenderedAppendsTables(t *testing.T) {
	result := Result{
		Text: "body text",
		Tables: []Table{
			{{"Phase", "End Date"}, {"Build", "2026-03-31"}},
		},
	}

	rendered := result.Rendered()
	if !strings.Contains(rendered, "body text") {
		t.Errorf("expected original text, got: %q", rendered)
	}
	if !strings.Contains(rendered, "Table 1:") {
		t.Errorf("expected table header, got: %q", rendered)
	}
	if !strings.Contains(rendered, "Build | 2026-03-31") {
		t.Errorf("expected pipe-joined row, got: %q", rendered)
	}
}

func TestRenderedNoTables(t *testing.T) {
	result := Result{Text: "plain"}
	if got := result.Rendered(); got != "plain" {
		t.Errorf("expected passthrough, got %q", got)
	}
}
