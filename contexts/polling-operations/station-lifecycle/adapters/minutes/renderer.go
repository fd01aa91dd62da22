package minutesadapter

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	domainerrors "scrutin/contexts/polling-operations/station-lifecycle/domain/errors"
	"scrutin/contexts/polling-operations/station-lifecycle/ports"
)

const defaultReferenceTemplate = "minutes/{{.ElectionID}}/{{.StationID}}/{{.ClosedAt.Unix}}"

// TemplateRenderer produces the closing-minutes reference from a template.
// The document itself is rendered by an external service keyed on this
// reference; only the reference is stored with the tally.
type TemplateRenderer struct {
	tmpl *template.Template
}

func NewTemplateRenderer(pattern string) (*TemplateRenderer, error) {
	if pattern == "" {
		pattern = defaultReferenceTemplate
	}
	tmpl, err := template.New("minutes_ref").Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("parse minutes reference template: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

func (r *TemplateRenderer) Render(_ context.Context, minutes ports.MinutesData) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, minutes); err != nil {
		return "", domainerrors.ErrMinutesRender
	}
	return buf.String(), nil
}

var _ ports.MinutesRenderer = (*TemplateRenderer)(nil)
