package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter exports chats in Markdown format
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(doc Document, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", doc.Name)

	if doc.Topic != "" {
		_, _ = fmt.Fprintf(w, "**Topic:** %s  \n", doc.Topic)
	}
	if doc.Aim != "" {
		_, _ = fmt.Fprintf(w, "**Aim:** %s  \n", doc.Aim)
	}
	if doc.Description != "" {
		_, _ = fmt.Fprintf(w, "**Description:** %s  \n", doc.Description)
	}
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", doc.CreatedAt)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(doc.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range doc.Messages {
		_, _ = fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", msg.Role, msg.Timestamp, escapeMarkdown(msg.Content))
		if i < len(doc.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func (e *MarkdownExporter) Extension() string { return "md" }

func (e *MarkdownExporter) ContentType() string { return "text/markdown" }

// escapeMarkdown escapes emphasis markers outside fenced code blocks.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}
