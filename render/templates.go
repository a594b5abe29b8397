package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"mailbuilder/common"
	"mailbuilder/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	Name    string
	Subject string
	Lang    string
	Format  string
	Source  string
	Images  int
}

func expandTemplate(res *Result, name config.TemplateFieldName, field string, format common.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context: string(name),
		Name:    res.Name,
		Subject: res.Subject,
		Lang:    res.Lang,
		Format:  format.String(),
		Source:  strings.TrimSuffix(filepath.Base(res.Source), filepath.Ext(res.Source)),
		Images:  len(res.Images),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
