package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports chats in JSON format (pretty-printed)
type JSONExporter struct{}

func (e *JSONExporter) Export(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

func (e *JSONExporter) Extension() string { return "json" }

func (e *JSONExporter) ContentType() string { return "application/json" }
