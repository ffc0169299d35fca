package parser

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

const maxLineSize = 1024 * 1024

// ParseParagraphs reads the document at filePath and returns its paragraphs
// in document order. Paragraphs may be empty; callers decide what to skip.
func ParseParagraphs(filePath string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".docx":
		return parseDOCX(filePath)
	case ".pdf":
		return parsePDF(filePath)
	case ".txt":
		return parseText(filePath)
	case ".md", ".markdown":
		return parseMarkdown(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	case ".xlsm", ".ods":
		return parseSpreadsheet(filePath)
	case ".pptx":
		return parsePPTX(filePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func parseDOCX(filePath string) ([]string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read docx %s: %w", filePath, err)
	}
	defer r.Close()

	return paragraphsFromWordXML(r.Editable().GetContent())
}

func parsePDF(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", filePath, err)
	}

	var paragraphs []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", i, err)
		}
		paragraphs = append(paragraphs, strings.Split(pageText, "\n")...)
	}
	return paragraphs, nil
}

func parseText(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return scanLines(f)
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseXLSX(filePath string) ([]string, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read xlsx %s: %w", filePath, err)
	}

	var paragraphs []string
	for _, sheet := range f.Sheets {
		for _, row := range sheet.Rows {
			if row == nil {
				continue
			}
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			paragraphs = append(paragraphs, strings.Join(cells, " "))
		}
	}
	return paragraphs, nil
}

func parseSpreadsheet(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet %s: %w", filePath, err)
	}
	defer f.Close()

	var paragraphs []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
		}
		for _, row := range rows {
			paragraphs = append(paragraphs, strings.Join(row, " "))
		}
	}
	return paragraphs, nil
}

// parsePPTX returns one paragraph per slide, in slide order.
func parsePPTX(filePath string) ([]string, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("read pptx %s: %w", filePath, err)
	}
	defer f.Close()

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, file := range f.File {
		name := strings.TrimPrefix(file.Name, "ppt/slides/slide")
		if name == file.Name || !strings.HasSuffix(name, ".xml") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(name, ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: num, file: file})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	paragraphs := make([]string, 0, len(slides))
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		paragraphs = append(paragraphs, extractTextFromXML(string(data)))
	}
	return paragraphs, nil
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(html.UnescapeString(part[:endIdx]) + " ")
		}
	}
	return text.String()
}
