package bomtable

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WordprocessingML namespaces (transitional and strict).
var wordNamespaces = map[string]bool{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main": true,
	"http://purl.oclc.org/ooxml/wordprocessingml/main":             true,
}

// ReadDocx reads the first table of a .docx document.
//
// Cell text is the cell's paragraphs joined with "\n". Within a paragraph,
// w:tab becomes "\t" and w:br / w:cr become "\n". A cell spanning several
// grid columns repeats its text in each of them, and a vertically merged
// continuation cell repeats the text of the cell above. Tables nested inside
// a cell are ignored.
func ReadDocx(path string) (*Table, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	rows, err := firstTable(rc)
	if err != nil {
		return nil, err
	}

	return &Table{Source: path, Rows: rows}, nil
}

// docxCell accumulates one w:tc.
type docxCell struct {
	paragraphs []string
	span       int
	mergeCont  bool
}

func (c *docxCell) text() string {
	return strings.Join(c.paragraphs, "\n")
}

// firstTable streams document.xml and returns the grid of the first
// top-level table.
func firstTable(r io.Reader) ([][]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		rows      [][]string
		row       []string
		cell      *docxCell
		paragraph strings.Builder
		depth     int // w:tbl nesting depth
		inText    bool
		found     bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !wordNamespaces[t.Name.Space] {
				continue
			}
			if t.Name.Local == "tbl" {
				depth++
				found = true
				continue
			}
			if depth != 1 {
				continue
			}
			switch t.Name.Local {
			case "tr":
				row = nil
			case "tc":
				cell = &docxCell{span: 1}
			case "gridSpan":
				if cell != nil {
					if n, err := strconv.Atoi(attrValue(t, "val")); err == nil && n > 1 {
						cell.span = n
					}
				}
			case "vMerge":
				if cell != nil {
					val := attrValue(t, "val")
					cell.mergeCont = val == "" || val == "continue"
				}
			case "p":
				paragraph.Reset()
			case "t":
				inText = true
			case "tab":
				if cell != nil {
					paragraph.WriteByte('\t')
				}
			case "br", "cr":
				if cell != nil {
					paragraph.WriteByte('\n')
				}
			}

		case xml.CharData:
			if inText && depth == 1 && cell != nil {
				paragraph.Write(t)
			}

		case xml.EndElement:
			if !wordNamespaces[t.Name.Space] {
				continue
			}
			if t.Name.Local == "tbl" {
				depth--
				if depth == 0 && found {
					return rows, nil
				}
				continue
			}
			if depth != 1 {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if cell != nil {
					cell.paragraphs = append(cell.paragraphs, paragraph.String())
				}
			case "tc":
				if cell == nil {
					continue
				}
				text := cell.text()
				if cell.mergeCont && len(rows) > 0 {
					above := rows[len(rows)-1]
					if col := len(row); col < len(above) {
						text = above[col]
					}
				}
				for i := 0; i < cell.span; i++ {
					row = append(row, text)
				}
				cell = nil
			case "tr":
				rows = append(rows, row)
				row = nil
			}
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: document has no table", ErrNoData)
	}
	return rows, nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
