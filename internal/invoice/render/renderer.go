package render

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/smallbiznis/netbill/internal/invoice/format"
)

//go:embed templates/*
var templates embed.FS

// NoticeInput is everything a customer-facing invoice notice shows.
type NoticeInput struct {
	CustomerName string
	Reference    string
	Description  string
	Amount       int64
	Balance      int64
	Currency     string
	DueDate      time.Time
}

type Renderer interface {
	RenderHTML(input NoticeInput) (string, error)
	RenderText(input NoticeInput) (string, error)
}

type NoticeRenderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() Renderer {
	funcs := map[string]any{
		"formatAmount": format.FormatAmount,
		"formatDate":   format.FormatDate,
	}
	return &NoticeRenderer{
		html: htmltemplate.Must(htmltemplate.New("invoice_notice.html").Funcs(funcs).
			ParseFS(templates, "templates/invoice_notice.html")),
		text: texttemplate.Must(texttemplate.New("invoice_notice.txt").Funcs(funcs).
			ParseFS(templates, "templates/invoice_notice.txt")),
	}
}

func (r *NoticeRenderer) RenderHTML(input NoticeInput) (string, error) {
	input = withDefaults(input)
	var buf bytes.Buffer
	if err := r.html.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *NoticeRenderer) RenderText(input NoticeInput) (string, error) {
	input = withDefaults(input)
	var buf bytes.Buffer
	if err := r.text.Execute(&buf, input); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func withDefaults(input NoticeInput) NoticeInput {
	if strings.TrimSpace(input.CustomerName) == "" {
		input.CustomerName = "customer"
	}
	if input.Currency == "" {
		input.Currency = format.DefaultCurrency
	}
	return input
}
