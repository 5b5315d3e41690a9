// Package notification composes and sends registration confirmation emails.
package notification

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"gopkg.in/yaml.v3"

	"raceday/internal/locale"
	"raceday/internal/race"
	"raceday/internal/registration/models"
)

//go:embed templates.yaml
var defaultTemplates []byte

// TemplateSource is the localized wording for one race category.
type TemplateSource struct {
	Subject locale.Text `yaml:"subject"`
	Text    locale.Text `yaml:"text"`
	HTML    locale.Text `yaml:"html"`
}

type templateFile struct {
	Categories map[race.Category]TemplateSource `yaml:"categories"`
}

// TemplateData is what placeholders can reference.
type TemplateData struct {
	FirstName string
	LastName  string
	Category  string
	BibNumber int
}

// Content is a rendered confirmation, ready to be addressed.
type Content struct {
	Subject string
	Text    string
	HTML    string
}

type compiled struct {
	subject map[locale.Locale]*texttemplate.Template
	text    map[locale.Locale]*texttemplate.Template
	html    map[locale.Locale]*htmltemplate.Template
}

// Templates holds parsed confirmation templates for every race category.
// It is immutable after loading.
type Templates struct {
	catalog    *locale.Catalog
	categories map[race.Category]compiled
}

// DefaultTemplates loads the templates embedded in the binary.
func DefaultTemplates(catalog *locale.Catalog) (*Templates, error) {
	return LoadTemplates(defaultTemplates, catalog)
}

// LoadTemplates parses YAML template definitions. Every race category must be
// present and every field must carry the default locale.
func LoadTemplates(raw []byte, catalog *locale.Catalog) (*Templates, error) {
	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}

	t := &Templates{catalog: catalog, categories: make(map[race.Category]compiled, len(file.Categories))}
	for category, src := range file.Categories {
		if !category.IsValid() {
			return nil, fmt.Errorf("templates: unknown race category %q", category)
		}
		c, err := compile(string(category), src)
		if err != nil {
			return nil, err
		}
		t.categories[category] = c
	}
	for _, r := range race.All() {
		if _, ok := t.categories[r.Category]; !ok {
			return nil, fmt.Errorf("templates: missing race category %q", r.Category)
		}
	}
	return t, nil
}

func compile(name string, src TemplateSource) (compiled, error) {
	for field, text := range map[string]locale.Text{"subject": src.Subject, "text": src.Text, "html": src.HTML} {
		if err := text.Validate(); err != nil {
			return compiled{}, fmt.Errorf("templates: %s %s: %w", name, field, err)
		}
	}

	c := compiled{
		subject: make(map[locale.Locale]*texttemplate.Template),
		text:    make(map[locale.Locale]*texttemplate.Template),
		html:    make(map[locale.Locale]*htmltemplate.Template),
	}
	for l, body := range src.Subject {
		if strings.TrimSpace(body) == "" {
			continue
		}
		tmpl, err := texttemplate.New(name + ".subject." + string(l)).Parse(body)
		if err != nil {
			return compiled{}, fmt.Errorf("templates: parse %s subject (%s): %w", name, l, err)
		}
		c.subject[l] = tmpl
	}
	for l, body := range src.Text {
		if strings.TrimSpace(body) == "" {
			continue
		}
		tmpl, err := texttemplate.New(name + ".text." + string(l)).Parse(body)
		if err != nil {
			return compiled{}, fmt.Errorf("templates: parse %s text (%s): %w", name, l, err)
		}
		c.text[l] = tmpl
	}
	for l, body := range src.HTML {
		if strings.TrimSpace(body) == "" {
			continue
		}
		tmpl, err := htmltemplate.New(name + ".html." + string(l)).Parse(body)
		if err != nil {
			return compiled{}, fmt.Errorf("templates: parse %s html (%s): %w", name, l, err)
		}
		c.html[l] = tmpl
	}
	return c, nil
}

// Compose renders the confirmation for rec in l. It is pure: the same record
// and locale always produce the same content.
func (t *Templates) Compose(rec *models.Record, l locale.Locale) (Content, error) {
	c, ok := t.categories[rec.RaceCategory]
	if !ok {
		return Content{}, fmt.Errorf("no template for race category %q", rec.RaceCategory)
	}

	data := TemplateData{
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Category:  rec.RaceCategory.DisplayName(t.catalog, l),
	}
	if rec.BibNumber != nil {
		data.BibNumber = *rec.BibNumber
	}

	var (
		out Content
		err error
	)
	if out.Subject, err = execute(pick(c.subject, l), data); err != nil {
		return Content{}, fmt.Errorf("render subject: %w", err)
	}
	out.Subject = strings.TrimSpace(out.Subject)
	if out.Text, err = execute(pick(c.text, l), data); err != nil {
		return Content{}, fmt.Errorf("render text: %w", err)
	}
	if out.HTML, err = execute(pick(c.html, l), data); err != nil {
		return Content{}, fmt.Errorf("render html: %w", err)
	}
	return out, nil
}

type executor interface {
	Execute(w io.Writer, data any) error
}

// pick selects the template for l, falling back to the default locale.
func pick[T executor](byLocale map[locale.Locale]T, l locale.Locale) T {
	if tmpl, ok := byLocale[l]; ok {
		return tmpl
	}
	return byLocale[locale.Default]
}

func execute(tmpl executor, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
