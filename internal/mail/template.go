package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates
var templateFS embed.FS

var (
	tmplMu    sync.Mutex
	tmplCache = map[string]*template.Template{}
)

// RenderTemplate executes the embedded template templates/<name> with
// data. Values are HTML escaped.
func RenderTemplate(name string, data any) (string, error) {
	t, err := lookupTemplate(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func lookupTemplate(name string) (*template.Template, error) {
	tmplMu.Lock()
	defer tmplMu.Unlock()
	if t, ok := tmplCache[name]; ok {
		return t, nil
	}
	t, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	tmplCache[name] = t
	return t, nil
}

// WelcomeData is the data of templates/auth/welcome.html.
type WelcomeData struct {
	AppName string
	Name    string
}
