package sender

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/dto"
)

// Renderer turns a typed payload into an email subject and plain-text body.
type Renderer interface {
	Render(jobType config.JobType, payload dto.Payload) (subject, body string, err error)
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

// TemplateRenderer renders payloads with text/template.
type TemplateRenderer struct {
	templates map[config.JobType]emailTemplate
}

var funcs = template.FuncMap{
	"money": func(amount float64, currency string) string {
		return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
	},
}

var defaultTemplates = map[config.JobType][2]string{
	config.JobTypeVerification: {
		"Verify your email address",
		`Hi {{.Name}},

Please confirm your email address by opening the link below:

{{.VerificationURL}}
`,
	},
	config.JobTypeWelcome: {
		"Welcome, {{.Name}}!",
		`Hi {{.Name}},

Your account is ready. Thanks for joining us.
`,
	},
	config.JobTypePasswordReset: {
		"Reset your password",
		`Hi {{.Name}},

Use the link below to choose a new password.{{if .ExpiresInMinutes}} It expires in {{.ExpiresInMinutes}} minutes.{{end}}

{{.ResetURL}}

If you did not ask for this, you can ignore this email.
`,
	},
	config.JobTypeOrderConfirmation: {
		"Order {{.OrderID}} confirmed",
		`Hi {{.Name}},

We received your order {{.OrderID}}.
{{range .Items}}
  {{.Quantity}} x {{.Name}} @ {{money .UnitPrice $.Currency}}{{end}}

Total: {{money .Total .Currency}}
`,
	},
	config.JobTypeOrderStatusUpdate: {
		"Order {{.OrderID}} is {{.Status}}",
		`Hi {{.Name}},

Your order {{.OrderID}} is now {{.Status}}.{{if .TrackingNumber}}
Tracking number: {{.TrackingNumber}}{{end}}
`,
	},
	config.JobTypeAdminNewOrder: {
		"New order {{.OrderID}}",
		`Order {{.OrderID}} was placed by {{.CustomerName}} <{{.CustomerEmail}}>.

Items: {{.ItemCount}}
Total: {{money .Total .Currency}}
`,
	},
}

// NewTemplateRenderer parses the built-in templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	r := &TemplateRenderer{templates: make(map[config.JobType]emailTemplate, len(defaultTemplates))}
	for jt, src := range defaultTemplates {
		if err := r.Add(jt, src[0], src[1]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers or replaces the templates for jobType.
func (r *TemplateRenderer) Add(jobType config.JobType, subject, body string) error {
	s, err := template.New(string(jobType) + ".subject").Funcs(funcs).Option("missingkey=error").Parse(subject)
	if err != nil {
		return fmt.Errorf("parse %s subject template: %w", jobType, err)
	}
	b, err := template.New(string(jobType) + ".body").Funcs(funcs).Option("missingkey=error").Parse(body)
	if err != nil {
		return fmt.Errorf("parse %s body template: %w", jobType, err)
	}
	r.templates[jobType] = emailTemplate{subject: s, body: b}
	return nil
}

func (r *TemplateRenderer) Render(jobType config.JobType, payload dto.Payload) (string, string, error) {
	t, ok := r.templates[jobType]
	if !ok {
		return "", "", fmt.Errorf("no template for job type %q", jobType)
	}

	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, payload); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", jobType, err)
	}
	if err := t.body.Execute(&body, payload); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", jobType, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}
