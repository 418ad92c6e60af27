package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"brainz-training/internal/domain/model"
)

func sampleChat() *model.Chat {
	chat := model.NewChat("c1", "Physics Basics")
	chat.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat.Messages = []model.ChatMessage{
		{ID: "m1", Role: model.RoleUser, Content: "what is inertia?", Timestamp: chat.CreatedAt},
		{ID: "m2", Role: model.RoleAssistant, Content: "resistance to change in motion", Timestamp: chat.CreatedAt.Add(time.Second)},
	}
	return chat
}

func TestNewExporterFormats(t *testing.T) {
	cases := []struct {
		format  string
		ext     string
		content string
	}{
		{"", "json", "application/json"},
		{"json", "json", "application/json"},
		{"yaml", "yaml", "application/yaml"},
		{"yml", "yaml", "application/yaml"},
		{"md", "md", "text/markdown"},
		{"markdown", "md", "text/markdown"},
	}
	for _, tc := range cases {
		exp, err := NewExporter(tc.format)
		if err != nil {
			t.Fatalf("NewExporter(%q): %v", tc.format, err)
		}
		if exp.Extension() != tc.ext {
			t.Errorf("format %q extension = %q, want %q", tc.format, exp.Extension(), tc.ext)
		}
		if exp.ContentType() != tc.content {
			t.Errorf("format %q content type = %q, want %q", tc.format, exp.ContentType(), tc.content)
		}
	}

	if _, err := NewExporter("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestJSONExport(t *testing.T) {
	exp, _ := NewExporter("json")
	var buf bytes.Buffer
	if err := exp.Export(NewDocument(sampleChat()), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Name != "Physics Basics" || len(doc.Messages) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.CreatedAt != "2025-06-01T12:00:00Z" {
		t.Fatalf("createdAt = %q", doc.CreatedAt)
	}
	if doc.Messages[0].Role != "user" || doc.Messages[1].Role != "assistant" {
		t.Fatalf("roles = %q %q", doc.Messages[0].Role, doc.Messages[1].Role)
	}
	// pretty-printed output
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatalf("JSON output not indented")
	}
}

func TestYAMLExport(t *testing.T) {
	exp, _ := NewExporter("yaml")
	var buf bytes.Buffer
	if err := exp.Export(NewDocument(sampleChat()), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var doc Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if doc.Name != "Physics Basics" || len(doc.Messages) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestMarkdownExport(t *testing.T) {
	exp, _ := NewExporter("md")
	var buf bytes.Buffer
	if err := exp.Export(NewDocument(sampleChat()), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Physics Basics",
		"**Topic:** " + model.DefaultTopic,
		"**Messages:** 2",
		"what is inertia?",
		"resistance to change in motion",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q\n%s", want, out)
		}
	}
}

func TestEscapeMarkdownPreservesCodeFences(t *testing.T) {
	in := "**bold** text\n```\n**left alone**\n```\n__more__"
	out := escapeMarkdown(in)

	if !strings.Contains(out, `\*\*bold\*\*`) {
		t.Errorf("emphasis not escaped: %q", out)
	}
	if !strings.Contains(out, "**left alone**") {
		t.Errorf("code fence content was escaped: %q", out)
	}
	if !strings.Contains(out, `\_\_more\_\_`) {
		t.Errorf("underscores not escaped: %q", out)
	}
}

func TestFilename(t *testing.T) {
	cases := []struct{ name, ext, want string }{
		{"Physics Basics", "json", "physics_basics_chat.json"},
		{"Training Session 1", "md", "training_session_1_chat.md"},
		{"What?! A chat...", "yaml", "what___a_chat____chat.yaml"},
	}
	for _, tc := range cases {
		if got := Filename(tc.name, tc.ext); got != tc.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", tc.name, tc.ext, got, tc.want)
		}
	}
}
