package generation

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

const artifactContentType = "text/html; charset=utf-8"

var artifactTemplate = template.Must(template.New("artifact").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Your plan</title></head>
<body>
<h1>Personal plan for {{.Identity}}</h1>
{{range .Plan.Sections}}
<section>
  <h2>{{.Title}} (total {{printf "%.0f" .Total}})</h2>
  <ul>
  {{range .Items}}<li>{{.}}</li>
  {{end}}</ul>
</section>
{{end}}
<footer>Order {{.TransactionID}}, generated {{.GeneratedAt}}</footer>
</body>
</html>
`))

// TemplateRenderer produces the final artifact bytes from a validated plan.
type TemplateRenderer struct {
	timeout time.Duration
}

func NewTemplateRenderer(timeout time.Duration) *TemplateRenderer {
	return &TemplateRenderer{timeout: timeout}
}

func (r *TemplateRenderer) Render(ctx context.Context, order *domain.Order, plan *domain.GeneratedPlan) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type payload struct {
		Identity      string
		TransactionID string
		GeneratedAt   string
		Plan          *domain.GeneratedPlan
	}

	done := make(chan struct{})
	var buf bytes.Buffer
	var renderErr error
	go func() {
		defer close(done)
		renderErr = artifactTemplate.Execute(&buf, payload{
			Identity:      order.Identity,
			TransactionID: order.TransactionID,
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			Plan:          plan,
		})
	}()

	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("render timed out: %w", ctx.Err())
	case <-done:
	}

	if renderErr != nil {
		return nil, "", fmt.Errorf("failed to render artifact: %w", renderErr)
	}
	return buf.Bytes(), artifactContentType, nil
}
