// Package export writes snapshots of the stash to files, either as a JSON
// document for backup and interchange or as a standalone HTML page with
// snippet contents rendered as markdown.
package export

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"

	"github.com/snipstash/snipstash/internal/errors"
	"github.com/snipstash/snipstash/internal/snippet"
	"github.com/snipstash/snipstash/internal/store"
)

// SchemaVersion identifies the JSON export document layout.
const SchemaVersion = "1.0"

// Format selects the export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Input contains parameters for Export.
type Input struct {
	Path   string // optional, default: <baseDir>/exports/stash-<timestamp>.<ext>
	Format Format // optional, default json
}

// Output contains the result of Export.
type Output struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exportedAt"`
}

// Document is the JSON export document. It carries the same three
// collections the durable store holds, under the same names.
type Document struct {
	SnipstashExport bool                     `json:"_snipstashExport"`
	SchemaVersion   string                   `json:"schemaVersion"`
	ExportedAt      int64                    `json:"exportedAt"`
	Snippets        []snippet.Snippet        `json:"snippets"`
	Categories      []snippet.Category       `json:"categories"`
	RecentActivity  []snippet.ActivityRecord `json:"recentActivity"`
}

// Export writes the repository's current snapshot to a file. The file is
// written to a temp path first and renamed into place, so a failure never
// clobbers an existing export.
func Export(ctx context.Context, repo *store.Repository, baseDir string, input Input) (*Output, error) {
	now := time.Now()

	format := input.Format
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatHTML {
		return nil, errors.NewInvalidRequest("format must be json or html")
	}

	path := input.Path
	if path == "" {
		path = defaultPath(baseDir, format, now)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	snap := repo.Snapshot()

	var body []byte
	var err error
	switch format {
	case FormatJSON:
		body, err = renderJSON(snap, now)
	case FormatHTML:
		body, err = RenderHTML(snap, now)
	}
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(path, body); err != nil {
		return nil, err
	}

	return &Output{
		Path:       path,
		Count:      len(snap.Snippets),
		ExportedAt: now.Unix(),
	}, nil
}

func renderJSON(snap store.Snapshot, now time.Time) ([]byte, error) {
	doc := Document{
		SnipstashExport: true,
		SchemaVersion:   SchemaVersion,
		ExportedAt:      now.Unix(),
		Snippets:        snap.Snippets,
		Categories:      snap.Categories,
		RecentActivity:  snap.Activity,
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return append(body, '\n'), nil
}

var htmlPage = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SnipStash export</title>
</head>
<body>
<h1>SnipStash export</h1>
<p>{{.Count}} snippets, exported {{.ExportedAt}}</p>
{{range .Snippets}}
<article>
<h2>{{.Title}}</h2>
<p><small>{{.CategoryName}} &middot; created {{.Created}} &middot; used {{.UsageCount}} times</small></p>
{{.Body}}
</article>
{{end}}
</body>
</html>
`))

type htmlSnippet struct {
	Title        string
	CategoryName string
	Created      string
	UsageCount   int
	Body         template.HTML
}

type htmlDoc struct {
	Count      int
	ExportedAt string
	Snippets   []htmlSnippet
}

// RenderHTML renders the snapshot as a standalone HTML page with each
// snippet's content converted from markdown.
func RenderHTML(snap store.Snapshot, now time.Time) ([]byte, error) {
	names := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		names[c.ID] = c.Name
	}

	doc := htmlDoc{
		Count:      len(snap.Snippets),
		ExportedAt: now.UTC().Format("2006-01-02 15:04"),
	}
	for _, s := range snap.Snippets {
		name := names[s.CategoryID]
		if name == "" {
			name = snippet.CategoryUncategorized
		}
		doc.Snippets = append(doc.Snippets, htmlSnippet{
			Title:        s.Title,
			CategoryName: name,
			Created:      s.DateCreated.UTC().Format("2006-01-02 15:04"),
			UsageCount:   s.UsageCount,
			Body:         renderMarkdown(s.Content),
		})
	}

	var buf bytes.Buffer
	if err := htmlPage.Execute(&buf, doc); err != nil {
		return nil, errors.NewInternal(err)
	}
	return buf.Bytes(), nil
}

// renderMarkdown converts markdown text to HTML using goldmark. Input that
// fails to convert is escaped and shown verbatim.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	}
	return template.HTML(buf.String())
}

// writeAtomic writes body to a temp file next to path and renames it into
// place.
func writeAtomic(path string, body []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	if err := os.WriteFile(tempPath, body, 0600); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	return nil
}

// defaultPath generates the default export path under baseDir.
func defaultPath(baseDir string, format Format, now time.Time) string {
	timestamp := now.Format("2006-01-02T150405")
	return filepath.Join(baseDir, "exports", fmt.Sprintf("stash-%s.%s", timestamp, format))
}
