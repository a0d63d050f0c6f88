package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/Melvinkheturus/examinerpro-web-sub001/fs"
)

const emailTemplatesDir = "templates/email"

// emailTemplate holds the text and html variants of a named email; either may be nil.
type emailTemplate struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

var (
	tmplMu          sync.RWMutex
	emailTemplates  = map[string]emailTemplate{}
	frontendBaseURL string
)

type (
	Attachment struct {
		Content     *bytes.Buffer // base64 encoded
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // plain text; wins over the text template
		Attachments []Attachment

		TemplateName string // file name without extension
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData is the root object of the email templates.
	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	EmailService interface {
		// SendMessages hands the messages over for sending in the background.
		SendMessages(messages ...*EmailMessage)
		// Wait blocks until every message handed over so far is processed.
		Wait()
	}
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data interface{}) error
}

func execute(tmpl executor, data ContextData) (string, error) {
	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render fills TextContent and HTMLContent from BodyStr or the named templates.
func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}

	tmplMu.RLock()
	tmpl := emailTemplates[m.TemplateName]
	data := ContextData{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}
	tmplMu.RUnlock()

	var err error
	if tmpl.text != nil && m.BodyStr == "" {
		if m.TextContent, err = execute(tmpl.text, data); err != nil {
			return errors.Wrap(err, "rendering text")
		}
	}
	if tmpl.html != nil {
		if m.HTMLContent, err = execute(tmpl.html, data); err != nil {
			return errors.Wrap(err, "rendering html")
		}
	}
	return nil
}

func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading attachment")
	}

	at := Attachment{Filename: filename, Content: new(bytes.Buffer)}
	encoder := base64.NewEncoder(base64.StdEncoding, at.Content)
	if _, err = encoder.Write(content); err != nil {
		return errors.Wrap(err, "encoding attachment")
	}
	if err = encoder.Close(); err != nil {
		return errors.Wrap(err, "encoding attachment")
	}

	if len(ct) > 0 {
		at.ContentType = ct[0]
	} else {
		at.ContentType = http.DetectContentType(content)
	}
	m.Attachments = append(m.Attachments, at)
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return (m.TextContent != "") || (m.HTMLContent != "") }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

// ParseEmailTemplates parses the embedded email templates, each on top of the "_base" layout of its kind.
// Layouts start with "_". Missing keys are errors in debug and test mode.
func ParseEmailTemplates(conf *Config, logger Logger) {
	parsed := make(map[string]emailTemplate)
	strict := conf.Debug || conf.TestMode
	option := "missingkey=default"
	if strict {
		option = "missingkey=error"
	}

	fps, err := fs.Glob(appfs.FS, path.Join(emailTemplatesDir, "*"))
	if err != nil {
		logger.Error(fmt.Sprintf("globbing email templates: %v", err), err)
	}
	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		layout := path.Join(emailTemplatesDir, "_base"+ext)
		entry := parsed[name]

		switch ext {
		case ".txt":
			entry.text, err = texttmpl.ParseFS(appfs.FS, layout, fp)
			if err == nil {
				entry.text.Option(option)
			}
		case ".gohtml":
			entry.html, err = htmltmpl.ParseFS(appfs.FS, layout, fp)
			if err == nil {
				entry.html.Option(option)
			}
		default:
			continue
		}
		if err != nil {
			logger.Error(fmt.Sprintf("parsing email template %q: %v", fname, err), err)
			continue
		}
		parsed[name] = entry
	}

	tmplMu.Lock()
	defer tmplMu.Unlock()
	frontendBaseURL = conf.FrontendBaseURL
	emailTemplates = parsed
}
