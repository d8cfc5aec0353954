package normalize

import "strings"

// GridTable is the raw per-panel table shape: header cell texts plus
// rows of cell texts, as delivered by the extraction layer.
type GridTable struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

// PanelContent describes one sub-panel at the extraction boundary: a
// candidate heading, the panel's text lines, and its raw tables.
type PanelContent struct {
	Heading   string      `json:"heading,omitempty"`
	RawLines  []string    `json:"rawLines,omitempty"`
	RawTables []GridTable `json:"rawTables,omitempty"`
}

// ContainerBlock is the structured form of one sub-panel: a label,
// key/value fields derived from its text, leftover unclassified lines,
// and the panel's surviving tables.
type ContainerBlock struct {
	Label  string      `json:"label,omitempty"`
	Fields *Fields     `json:"fields,omitempty"`
	Lines  []string    `json:"lines,omitempty"`
	Tables []GridTable `json:"tables,omitempty"`
}

func (b ContainerBlock) Empty() bool {
	return b.Label == "" && b.Fields.Len() == 0 && len(b.Lines) == 0 && len(b.Tables) == 0
}

// AssembleContainer builds one ContainerBlock. Lines equal to the heading
// are dropped so the label does not repeat as body text; the remaining
// lines run through SplitLines, keeping only the key/values and the
// unclassified residue (the audit copy is a LineBlock concern). Tables
// keep rows with at least one non-empty cell and vanish when none remain.
func AssembleContainer(heading string, rawLines []string, rawTables []GridTable) ContainerBlock {
	out := ContainerBlock{Label: strings.TrimSpace(heading)}

	filtered := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.TrimSpace(line)
		if line == "" || (out.Label != "" && line == out.Label) {
			continue
		}
		filtered = append(filtered, line)
	}

	block := SplitLines(filtered)
	out.Fields = block.KeyValues
	out.Lines = block.Rows

	for _, table := range rawTables {
		kept := make([][]string, 0, len(table.Rows))
		for _, row := range table.Rows {
			if rowHasContent(row) {
				kept = append(kept, row)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out.Tables = append(out.Tables, GridTable{Headers: table.Headers, Rows: kept})
	}

	return out
}

// AssemblePanel applies AssembleContainer to one extracted panel.
func AssemblePanel(panel PanelContent) ContainerBlock {
	return AssembleContainer(panel.Heading, panel.RawLines, panel.RawTables)
}

func rowHasContent(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
