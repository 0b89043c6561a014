package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/adinote/adinote/internal/model"
)

// Renderer serializes records to the fixed JSON schema.
type Renderer struct {
	indent bool
}

// NewRenderer creates a new renderer.
func NewRenderer(indent bool) *Renderer {
	return &Renderer{indent: indent}
}

// RenderJSON writes the record as JSON to the given path. "-" or ""
// writes to stdout.
func (r *Renderer) RenderJSON(rec *model.VisitRecord, path string) error {
	data, err := r.marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// RenderSummary prints a one-line human summary to w.
func (r *Renderer) RenderSummary(w io.Writer, rec *model.VisitRecord) {
	reason := "-"
	if rec.Reason != nil {
		reason = *rec.Reason
	}
	fmt.Fprintf(w, "%s: reason=%q interventions=%d problems=%d warnings=%d\n",
		rec.Meta.RecordID, reason, len(rec.Interventions), len(rec.Problems), len(rec.Warnings))
}

func (r *Renderer) marshal(rec *model.VisitRecord) ([]byte, error) {
	if r.indent {
		return json.MarshalIndent(rec, "", "  ")
	}
	return json.Marshal(rec)
}
