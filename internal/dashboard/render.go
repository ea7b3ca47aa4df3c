package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/i474232898/weather-dashboard/internal/alert"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// DefaultTitle is the page heading.
const DefaultTitle = "City Weather Dashboard"

type pageData struct {
	Title     string
	Rows      []Row
	Alerts    []alert.Alert
	Chart     any
	UpdatedAt time.Time
}

// RenderHTML writes the dashboard page for v.
func RenderHTML(w io.Writer, v View) error {
	data := pageData{
		Title:     DefaultTitle,
		Rows:      v.Rows,
		Alerts:    v.Alerts,
		UpdatedAt: v.UpdatedAt,
	}
	// A typed nil pointer would still reach MarshalJSON.
	if v.Chart != nil {
		data.Chart = v.Chart
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

// WriteHTML renders v to path. The file is written to a temporary sibling and
// renamed so readers never observe a partial page.
func WriteHTML(path string, v View) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, v); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}
