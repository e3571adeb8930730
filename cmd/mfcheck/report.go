package main

import (
	"encoding/json"
	"io"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/sghaida/manufactory/internal/depgraph"
	"github.com/sghaida/manufactory/manufactory"
	"github.com/sghaida/manufactory/typeindex"
)

// Report is what validate and explain print.
type Report struct {
	Name            string    `json:"name" yaml:"name"`
	Types           []TypeRow `json:"types" yaml:"types"`
	Order           []string  `json:"order,omitempty" yaml:"order,omitempty"`
	Exports         []string  `json:"exports,omitempty" yaml:"exports,omitempty"`
	Imports         []string  `json:"imports,omitempty" yaml:"imports,omitempty"`
	OptionalImports []string  `json:"optionalImports,omitempty" yaml:"optionalImports,omitempty"`

	// Created is set when the component was complete and a manufactory was
	// built from it, eager lifecycles included.
	Created  bool     `json:"created" yaml:"created"`
	Problems []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

type TypeRow struct {
	Name      string    `json:"name" yaml:"name"`
	Lifecycle string    `json:"lifecycle" yaml:"lifecycle"`
	Deps      []DepSpec `json:"deps,omitempty" yaml:"deps,omitempty"`
	Exported  bool      `json:"exported" yaml:"exported"`
}

// OK reports whether no problem was found.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

func (r *Report) addProblem(err error) {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range multi.Unwrap() {
			r.addProblem(e)
		}
		return
	}
	r.Problems = append(r.Problems, err.Error())
}

// analyze validates m end to end. The returned Manufactory is nil unless the
// component was complete and creating it succeeded.
func analyze(m *Manifest, opts ...manufactory.Option) (*Report, *manufactory.Manufactory) {
	r := &Report{Name: m.Name}
	for _, ts := range m.Types {
		r.Types = append(r.Types, TypeRow{Name: ts.Name, Lifecycle: ts.Lifecycle.String(), Deps: ts.Deps})
	}
	r.Order = constructionOrder(m)

	if err := m.validate(); err != nil {
		r.addProblem(err)
		return r, nil
	}

	comp, err := m.component(opts...)
	if err != nil {
		r.addProblem(err)
		return r, nil
	}
	r.Exports = nameList(comp.Exports())
	r.Imports = nameList(comp.Imports())
	r.OptionalImports = nameList(comp.OptionalImports())

	exported := map[string]bool{}
	for _, e := range r.Exports {
		exported[e] = true
	}
	for i := range r.Types {
		r.Types[i].Exported = exported[r.Types[i].Name]
	}

	// A component with imports is only complete once composed with another.
	if len(r.Imports) > 0 {
		return r, nil
	}

	mf, err := manufactory.Create(comp, opts...)
	if err != nil {
		r.addProblem(err)
		return r, nil
	}
	r.Created = true
	return r, mf
}

// constructionOrder lists types dependencies first, or nil on a cycle.
func constructionOrder(m *Manifest) []string {
	g := depgraph.New[string]()
	for _, ts := range m.Types {
		edges := make([]depgraph.Edge[string], len(ts.Deps))
		for i, d := range ts.Deps {
			edges[i] = depgraph.Edge[string]{To: d.Type, Optional: d.Optional}
		}
		g.AddNode(ts.Name, edges...)
	}
	order, ok := g.TopoOrder()
	if !ok {
		return nil
	}
	return order
}

// nameList is typeindex.Names with nil for an empty list, so reports
// survive a YAML or JSON round trip unchanged.
func nameList(idx []typeindex.Index) []string {
	if len(idx) == 0 {
		return nil
	}
	return typeindex.Names(idx)
}

func writeReport(w io.Writer, r *Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "", "text":
		return reportTpl.Execute(w, r)
	}
	return &manifestError{msg: "unknown output format " + format}
}

var reportTpl = template.Must(
	template.New("report").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(`Manifest: {{if .Name}}{{.Name}}{{else}}(unnamed){{end}}
Status:   {{if not .OK}}INVALID{{else if .Created}}OK{{else}}OK (needs imports){{end}}

Types:
{{- range .Types}}
  {{printf "%-28s" .Name}} {{.Lifecycle}}{{if .Exported}}, exported{{end}}
{{- range .Deps}}
      <- {{.Type}}{{if .Optional}} (optional){{end}}
{{- end}}
{{- end}}
{{with .Order}}
Construction order:
  {{join . " -> "}}
{{end}}
{{- with .Imports}}
Imports:           {{join . ", "}}
{{- end}}
{{- with .OptionalImports}}
Optional imports:  {{join . ", "}}
{{- end}}
{{- with .Problems}}

Problems:
{{- range .}}
  - {{.}}
{{- end}}
{{- end}}
`))
