package normalize

import "strings"

// LineBlock is the result of splitting a free-text region: classified
// key/values, lines that failed classification, and an audit copy of
// every input line in order.
type LineBlock struct {
	KeyValues *Fields  `json:"key_values,omitempty"`
	Rows      []string `json:"rows,omitempty"`
	Lines     []string `json:"lines,omitempty"`
}

func (b LineBlock) Empty() bool {
	return b.KeyValues.Len() == 0 && len(b.Rows) == 0 && len(b.Lines) == 0
}

// SplitLines classifies each line on its first colon. A colon that is
// neither the first nor the last character splits the line into a
// trimmed key and value; only the first colon counts, so colons inside
// the value (timestamps, URLs) stay with the value. Everything else
// lands in Rows. Input lines are assumed already trimmed and non-empty.
func SplitLines(lines []string) LineBlock {
	keyValues := NewFields()
	var rows []string
	var audit []string

	for _, line := range lines {
		audit = append(audit, line)
		idx := strings.Index(line, ":")
		if idx > 0 && idx < len(line)-1 {
			key := strings.TrimSpace(line[:idx])
			value := strings.TrimSpace(line[idx+1:])
			keyValues.Add(key, value)
			continue
		}
		rows = append(rows, line)
	}

	out := LineBlock{Rows: rows, Lines: audit}
	if keyValues.Len() > 0 {
		out.KeyValues = keyValues
	}
	return out
}
