package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"harristax/internal/normalize"
)

const maxTitleLength = 200

// Tables extracts one RawTableEntry per <table> within sel (or sel itself
// when it is a table). The title comes from the table's caption, falling
// back to the nearest preceding sibling with a short rendered text. Rows
// whose cells are all blank are dropped at this boundary.
func Tables(sel *goquery.Selection) []normalize.RawTableEntry {
	if sel == nil {
		return nil
	}
	tables := sel.Find("table")
	if sel.Is("table") {
		tables = sel
	}

	var out []normalize.RawTableEntry
	tables.Each(func(_ int, table *goquery.Selection) {
		entry := normalize.RawTableEntry{Title: tableTitle(table)}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			row := normalize.RawRow{Header: tr.Find("th").Length() > 0}
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				row.Cells = append(row.Cells, strings.TrimSpace(cell.Text()))
			})
			for _, cell := range row.Cells {
				if cell != "" {
					entry.Rows = append(entry.Rows, row)
					break
				}
			}
		})
		out = append(out, entry)
	})
	return out
}

func tableTitle(table *goquery.Selection) string {
	title := strings.TrimSpace(table.Find("caption").First().Text())
	if title != "" {
		return title
	}
	for prev := table.Prev(); prev.Length() > 0; prev = prev.Prev() {
		text := strings.TrimSpace(prev.Text())
		if text != "" && utf8.RuneCountInString(text) < maxTitleLength {
			return text
		}
	}
	return ""
}

// Lines renders sel the way a browser's innerText would and splits the
// result into trimmed, non-empty lines.
func Lines(sel *goquery.Selection) []string {
	if sel == nil {
		return nil
	}
	return SplitTextLines(BlockText(sel))
}

// Panels builds one PanelContent per element matching panelSelector under
// root: a heading from the first title-like element, the panel's text
// lines, and its tables as grids of non-empty cells.
func Panels(root *goquery.Selection, panelSelector string) []normalize.PanelContent {
	if root == nil {
		return nil
	}
	var out []normalize.PanelContent
	root.Find(panelSelector).Each(func(_ int, panel *goquery.Selection) {
		content := normalize.PanelContent{RawLines: Lines(panel)}
		heading := panel.Find("h1,h2,h3,h4,h5,strong,.title").First()
		if heading.Length() > 0 {
			content.Heading = strings.TrimSpace(heading.Text())
		}
		panel.Find("table").Each(func(_ int, table *goquery.Selection) {
			grid := normalize.GridTable{}
			table.Find("th").Each(func(_ int, th *goquery.Selection) {
				grid.Headers = append(grid.Headers, strings.TrimSpace(th.Text()))
			})
			table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
				var cells []string
				tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
					text := strings.TrimSpace(cell.Text())
					if text != "" {
						cells = append(cells, text)
					}
				})
				if len(cells) > 0 {
					grid.Rows = append(grid.Rows, cells)
				}
			})
			if len(grid.Rows) > 0 {
				content.RawTables = append(content.RawTables, grid)
			}
		})
		out = append(out, content)
	})
	return out
}

// Paragraphs returns the unique non-blank <p> texts under sel in
// first-seen order.
func Paragraphs(sel *goquery.Selection) []string {
	if sel == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	})
	return out
}

var blockTags = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "dd": {},
	"div": {}, "dl": {}, "dt": {}, "fieldset": {}, "figure": {}, "footer": {},
	"form": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "main": {}, "nav": {}, "ol": {}, "p": {},
	"pre": {}, "section": {}, "table": {}, "tr": {}, "ul": {},
}

// BlockText approximates innerText: block-level boundaries and <br>
// become newlines, table cells are joined with tabs so a label/value row
// stays on one line.
func BlockText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, node := range sel.Nodes {
		writeNodeText(node, &b)
	}
	return b.String()
}

func writeNodeText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		case "br":
			b.WriteByte('\n')
			return
		}
		_, block := blockTags[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNodeText(c, b)
		}
		if n.Data == "td" || n.Data == "th" {
			b.WriteByte('\t')
		}
		if block {
			b.WriteByte('\n')
		}
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNodeText(c, b)
		}
	}
}

// SplitTextLines splits text into trimmed, non-empty lines.
func SplitTextLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
