package normalize

import (
	"embed"
	"log"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed config/fields.yaml
var fieldsYAML embed.FS

// FieldKind selects the normalizer/validator pair for a contributable field.
// Adding a new contributable field is a registry entry, not a new branch in
// every component.
type FieldKind string

const (
	KindText           FieldKind = "text"
	KindAmount         FieldKind = "amount"
	KindDate           FieldKind = "date"
	KindAcceptanceRate FieldKind = "acceptance_rate"
	KindStringList     FieldKind = "string_list"
	KindAwardStructure FieldKind = "award_structure"
	KindRecipients     FieldKind = "recipients"
)

// FieldSpec describes one contributable field.
type FieldSpec struct {
	Name        string    `yaml:"name"`
	Kind        FieldKind `yaml:"kind"`
	Label       string    `yaml:"label"`
	Description string    `yaml:"description,omitempty"`

	// CatchAll marks a spec synthesized for a field name not in the registry.
	CatchAll bool `yaml:"-"`
}

type fieldRegistry struct {
	Fields []FieldSpec `yaml:"fields"`
}

var registry = loadRegistry()

func loadRegistry() map[string]FieldSpec {
	data, err := fieldsYAML.ReadFile("config/fields.yaml")
	if err != nil {
		log.Fatalf("failed to read embedded field registry: %v", err)
	}

	var reg fieldRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		log.Fatalf("failed to parse field registry: %v", err)
	}

	m := make(map[string]FieldSpec, len(reg.Fields))
	for _, f := range reg.Fields {
		m[f.Name] = f
	}
	return m
}

// Lookup resolves a field name to its spec. Unknown names are accepted under
// a text catch-all with no structural validation beyond non-empty content.
func Lookup(name string) FieldSpec {
	if spec, ok := registry[name]; ok {
		return spec
	}
	return FieldSpec{Name: name, Kind: KindText, Label: "Other", CatchAll: true}
}

// KnownFields returns the names of all registered contributable fields.
func KnownFields() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
