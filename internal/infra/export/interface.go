package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"brainz-training/internal/domain/model"
)

// Document is the downloadable rendition of a single training chat:
// metadata plus the full transcript, timestamps in RFC3339.
type Document struct {
	Name        string            `json:"name" yaml:"name"`
	Topic       string            `json:"topic" yaml:"topic"`
	Aim         string            `json:"aim" yaml:"aim"`
	Description string            `json:"description" yaml:"description"`
	CreatedAt   string            `json:"createdAt" yaml:"createdAt"`
	Messages    []DocumentMessage `json:"messages" yaml:"messages"`
}

type DocumentMessage struct {
	Role      string `json:"role" yaml:"role"`
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

func NewDocument(chat *model.Chat) Document {
	doc := Document{
		Name:        chat.Name,
		Topic:       chat.Topic,
		Aim:         chat.Aim,
		Description: chat.Description,
		CreatedAt:   chat.CreatedAt.Format(time.RFC3339),
		Messages:    make([]DocumentMessage, 0, len(chat.Messages)),
	}
	for _, m := range chat.Messages {
		doc.Messages = append(doc.Messages, DocumentMessage{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return doc
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc Document, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "", "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
	}
}

// Filename derives the download filename the same way the product always has:
// non-alphanumerics become underscores, lowercased, suffixed "_chat".
func Filename(chatName, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(chatName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + "_chat." + ext
}
