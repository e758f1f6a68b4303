package domain

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

// Rendered is a notification ready for an email transport.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

type templateSet struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *template.Template
}

func newTemplateSet(subject, text, html string) templateSet {
	return templateSet{
		subject: texttemplate.Must(texttemplate.New("subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New("text").Parse(text)),
		html:    template.Must(template.New("html").Parse(html)),
	}
}

var templates = map[Kind]templateSet{
	KindProjectCreated: newTemplateSet(
		`Your {{.ServiceType}} project has started`,
		`We received your payment and opened "{{.Title}}".
{{if .EstimatedDelivery}}Estimated delivery: {{.EstimatedDelivery}}
{{end}}Follow progress at {{.PortalURL}}
`,
		`<p>We received your payment and opened <strong>{{.Title}}</strong>.</p>
{{if .EstimatedDelivery}}<p>Estimated delivery: {{.EstimatedDelivery}}</p>
{{end}}<p><a href="{{.PortalURL}}">Follow progress in your portal</a></p>
`),
	KindStatusUpdate: newTemplateSet(
		`{{.Title}}: {{.StatusLabel}}`,
		`Your {{.ServiceType}} project "{{.Title}}" is now at: {{.StatusLabel}}.
{{if .Note}}
{{.Note}}
{{end}}
View the project at {{.PortalURL}}
`,
		`<p>Your {{.ServiceType}} project <strong>{{.Title}}</strong> is now at: {{.StatusLabel}}.</p>
{{if .Note}}<p>{{.Note}}</p>
{{end}}<p><a href="{{.PortalURL}}">View the project</a></p>
`),
	KindDocumentUploaded: newTemplateSet(
		`New document on {{.Title}}`,
		`{{.Filename}} was added to "{{.Title}}".
Download it at {{.PortalURL}}
`,
		`<p><strong>{{.Filename}}</strong> was added to {{.Title}}.</p>
<p><a href="{{.PortalURL}}">Open the project</a></p>
`),
	KindNewMessage: newTemplateSet(
		`New message from {{.SenderName}}`,
		`{{.SenderName}} wrote on "{{.ProjectTitle}}":

{{.MessagePreview}}

Reply at {{.PortalURL}}
`,
		`<p>{{.SenderName}} wrote on <strong>{{.ProjectTitle}}</strong>:</p>
<blockquote>{{.MessagePreview}}</blockquote>
<p><a href="{{.PortalURL}}">Reply in the portal</a></p>
`),
}

// Render produces the subject and bodies for n.
func Render(n Notification) (Rendered, error) {
	set, ok := templates[n.Kind]
	if !ok {
		return Rendered{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	var subject, text, html bytes.Buffer
	if err := set.subject.Execute(&subject, n.Data); err != nil {
		return Rendered{}, fmt.Errorf("render subject: %w", err)
	}
	if err := set.text.Execute(&text, n.Data); err != nil {
		return Rendered{}, fmt.Errorf("render text: %w", err)
	}
	if err := set.html.Execute(&html, n.Data); err != nil {
		return Rendered{}, fmt.Errorf("render html: %w", err)
	}
	return Rendered{Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}
