package source

import (
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLOptions selects and converts an HTML table.
type HTMLOptions struct {
	// TableID picks the <table> with this id; empty picks the first.
	TableID string
	// Markdown keeps inline formatting of cells (links, emphasis, code) as
	// markdown instead of flattening it to plain text.
	Markdown bool
}

// ReadHTML reads a <table> from an HTML document. Header cells come from
// the first row containing only <th> elements; when there is none, columns
// are named col1, col2, ...
func ReadHTML(r io.Reader, opts HTMLOptions) (*Dataset, error) {
	id := opts.TableID
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	table := findTable(doc, id)
	if table == nil {
		if id != "" {
			return nil, fmt.Errorf("%w: no <table id=%q>", ErrNoTable, id)
		}
		return nil, fmt.Errorf("%w: document has no <table>", ErrNoTable)
	}

	var header []string
	var records [][]string
	for _, tr := range tableRows(table) {
		cells, isHeader, err := rowCells(tr, opts.Markdown)
		if err != nil {
			return nil, err
		}
		if isHeader && header == nil {
			header = cells
			continue
		}
		if len(cells) > 0 {
			records = append(records, cells)
		}
	}

	if header == nil {
		width := 0
		for _, rec := range records {
			width = max(width, len(rec))
		}
		for i := range width {
			header = append(header, fmt.Sprintf("col%d", i+1))
		}
	}

	rows := make([]grid.Row, 0, len(records))
	for _, rec := range records {
		row := make(grid.Row, len(header))
		for i, key := range header {
			if i < len(rec) {
				row[key] = parseScalar(rec[i])
			} else {
				row[key] = nil
			}
		}
		rows = append(rows, row)
	}
	return &Dataset{Columns: InferColumns(header), Rows: rows}, nil
}

func findTable(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		if id == "" || attr(n, "id") == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c, id); t != nil {
			return t
		}
	}
	return nil
}

// tableRows collects <tr> elements of table without descending into
// nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func rowCells(tr *html.Node, markdown bool) (cells []string, header bool, err error) {
	header = true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Th && c.DataAtom != atom.Td) {
			continue
		}
		if c.DataAtom == atom.Td {
			header = false
		}

		text := textContent(c)
		if markdown && c.DataAtom == atom.Td {
			if text, err = markdownContent(c); err != nil {
				return nil, false, err
			}
		}
		cells = append(cells, text)
	}
	return cells, header && len(cells) > 0, nil
}

// markdownContent converts the children of a cell to single-line markdown.
func markdownContent(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	md, err := htmltomarkdown.ConvertString(b.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert cell to markdown: %w", err)
	}
	return strings.Join(strings.Fields(md), " "), nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
