package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	texttpl "text/template"
)

// Template names accepted in EmailJob.Template.
const (
	TemplatePostPublished = "post_published"
	TemplateNewComment    = "new_comment"
)

type emailTemplate struct {
	subject string
	text    *texttpl.Template
	html    *template.Template
}

var templates = map[string]emailTemplate{
	TemplatePostPublished: {
		subject: "Your post is now live",
		text: texttpl.Must(texttpl.New("post_published_text").Parse(
			"Hi {{.Name}},\n\nYour post \"{{.PostTitle}}\" has been published.\n")),
		html: template.Must(template.New("post_published_html").Parse(
			`<p>Hi {{.Name}},</p><p>Your post &ldquo;{{.PostTitle}}&rdquo; has been published.</p>`)),
	},
	TemplateNewComment: {
		subject: "New comment on your post",
		text: texttpl.Must(texttpl.New("new_comment_text").Parse(
			"Hi {{.Name}},\n\nSomeone commented on \"{{.PostTitle}}\":\n\n{{.Comment}}\n")),
		html: template.Must(template.New("new_comment_html").Parse(
			`<p>Hi {{.Name}},</p><p>Someone commented on &ldquo;{{.PostTitle}}&rdquo;:</p><blockquote>{{.Comment}}</blockquote>`)),
	},
}

// Render produces subject, text and html bodies for the named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	t, ok := templates[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	var tb, hb bytes.Buffer
	if err := t.text.Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	if err := t.html.Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	return t.subject, tb.String(), hb.String(), nil
}
