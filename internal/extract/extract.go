package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"sow-backend/internal/shared/storage/object"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Documents with fewer words than this are assumed to be scanned images
// rather than digital text.
const scannedWordThreshold = 50

// Table is one extracted table, rows of cell text.
type Table [][]string

// Metadata describes the extracted document.
type Metadata struct {
	Filename    string  `json:"filename"`
	SizeMB      float64 `json:"size_mb"`
	Format      string  `json:"format"`
	WordCount   int     `json:"word_count"`
	IsScanned   bool    `json:"is_scanned"`
	TablesFound int     `json:"tables_found"`
	PageCount   int     `json:"page_count"`
}

// Result is the outcome of a document extraction.
type Result struct {
	Text     string
	Tables   []Table
	Metadata Metadata
}

// Extract pulls text, tables and metadata from a stored object and persists a
// derived .extracted.txt copy (text plus rendered tables).
// PDF text via github.com/ledongthuc/pdf; DOCX via archive/zip + encoding/xml.
func Extract(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return Result{}, fmt.Errorf("extract key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return Result{}, fmt.Errorf("extract key=%s mime=%s: read: %w", fileKey, mimeType, err)
	}

	result, err := ExtractFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return Result{}, fmt.Errorf("extract key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	extractedKey := fileKey + ".extracted.txt"
	if err := saveExtracted(ctx, store, extractedKey, result.Rendered()); err != nil {
		return Result{}, fmt.Errorf("extract key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	return result, nil
}

// ExtractFromBytes extracts from an in-memory payload.
func ExtractFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	normalized := normalizeMimeType(mimeType, fileName, data)

	var result Result
	var err error
	switch normalized {
	case mimePDF:
		result, err = extractPDF(data)
		result.Metadata.Format = "pdf"
	case mimeDOCX:
		result, err = extractDOCX(data)
		result.Metadata.Format = "docx"
	default:
		return Result{}, fmt.Errorf("unsupported mime type: %s", normalized)
	}
	if err != nil {
		return Result{}, err
	}

	result.Metadata.Filename = fileName
	result.Metadata.SizeMB = math.Round(float64(len(data))/(1024*1024)*100) / 100
	result.Metadata.WordCount = len(strings.Fields(result.Text))
	result.Metadata.IsScanned = result.Metadata.WordCount < scannedWordThreshold
	result.Metadata.TablesFound = len(result.Tables)
	return result, nil
}

// Rendered appends tables to the text as pipe-joined rows so a stored
// extraction carries everything the analysis prompt needs.
func (r Result) Rendered() string {
	if len(r.Tables) == 0 {
		return r.Text
	}
	var b strings.Builder
	b.WriteString(r.Text)
	b.WriteString("\n\nTABLES:\n")
	for i, table := range r.Tables {
		fmt.Fprintf(&b, "Table %d:\n", i+1)
		for _, row := range table {
			b.WriteString(strings.Join(row, " | "))
			b.WriteString("\n")
		}
	}
	return b.String()
}

type keySaver interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

func saveExtracted(ctx context.Context, store object.ObjectStore, key string, text string) error {
	saver, ok := store.(keySaver)
	if !ok {
		return errors.New("object store does not support SaveWithKey")
	}
	reader := strings.NewReader(text)
	_, err := saver.SaveWithKey(ctx, key, "text/plain; charset=utf-8", reader)
	return err
}

func extractPDF(data []byte) (Result, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return Result{}, err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return Result{}, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Result{}, err
	}
	return Result{
		Text:     buf.String(),
		Metadata: Metadata{PageCount: pdfReader.NumPage()},
	}, nil
}

func extractDOCX(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return Result{}, err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return Result{}, errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return Result{}, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return Result{}, err
	}

	text, tables := parseDocxXML(string(raw))
	return Result{Text: text, Tables: tables}, nil
}

// parseDocxXML walks the WordprocessingML body once, collecting paragraph
// text and table cells. Table cell text also appears in the running text, the
// same way page-level extraction sees it.
func parseDocxXML(raw string) (string, []Table) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	var tables []Table

	var table Table
	var row []string
	var cell strings.Builder
	tableDepth := 0
	cellDepth := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw, nil
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					table = Table{}
				}
			case "tr":
				if tableDepth == 1 {
					row = []string{}
				}
			case "tc":
				if tableDepth == 1 {
					cellDepth++
					cell.Reset()
				}
			}
		case xml.CharData:
			buf.WriteString(string(t))
			if cellDepth > 0 {
				cell.WriteString(string(t))
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "br":
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			case "tbl":
				if tableDepth == 1 && len(table) > 0 {
					tables = append(tables, table)
				}
				tableDepth--
			case "tr":
				if tableDepth == 1 && row != nil {
					table = append(table, row)
					row = nil
				}
			case "tc":
				if tableDepth == 1 && cellDepth > 0 {
					row = append(row, strings.TrimSpace(cell.String()))
					cellDepth--
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), tables
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean != "application/zip" {
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".docx":
		return mimeDOCX
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return clean
	}
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		switch name {
		case "word/document.xml":
			return mimeDOCX
		case "xl/workbook.xml":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case "ppt/presentation.xml":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
	}
	return ""
}
