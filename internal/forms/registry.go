package forms

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml catalog/formconfig.schema.json
var catalogFS embed.FS

const (
	schemaURL       = "formconfig.schema.json"
	contactDocument = "_contact.yaml"
)

// Registry is the read-only catalog of service forms, looked up by service id.
type Registry struct {
	configs map[string]*ServiceConfig
	order   []string
}

// document is the on-disk shape of one catalog file.
type document struct {
	ServiceConfig
	ContactFields []string `json:"contactFields,omitempty"`
}

// NewRegistry builds a registry from configs, running the consistency check on each.
func NewRegistry(configs ...*ServiceConfig) (*Registry, error) {
	r := &Registry{configs: make(map[string]*ServiceConfig, len(configs))}
	var errs []error
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if err := Check(cfg); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.configs[cfg.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate service id %q", ErrInvalidConfig, cfg.ID))
			continue
		}
		r.configs[cfg.ID] = cfg
		r.order = append(r.order, cfg.ID)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// LoadDefault loads the catalog compiled into the binary.
func LoadDefault() (*Registry, error) {
	sub, err := fs.Sub(catalogFS, "catalog")
	if err != nil {
		return nil, fmt.Errorf("forms: open embedded catalog: %w", err)
	}
	return LoadFS(sub)
}

// LoadDir loads a catalog from a directory of YAML files. The directory may
// carry its own formconfig.schema.json; otherwise the embedded one is used.
func LoadDir(dir string) (*Registry, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads every *.yaml document in fsys. A _contact.yaml document holds
// the shared contact fields that services pull in through contactFields.
func LoadFS(fsys fs.FS) (*Registry, error) {
	validator, err := newDocumentValidator(fsys)
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("forms: list catalog: %w", err)
	}
	sort.Strings(names)

	shared := map[string]FieldSpec{}
	if data, err := fs.ReadFile(fsys, contactDocument); err == nil {
		doc, err := validator.decode(contactDocument, data, true)
		if err != nil {
			return nil, err
		}
		for _, f := range doc.Fields {
			shared[f.Name] = f
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("forms: read %s: %w", contactDocument, err)
	}

	var configs []*ServiceConfig
	for _, name := range names {
		if path.Base(name) == contactDocument {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("forms: read %s: %w", name, err)
		}
		doc, err := validator.decode(name, data, false)
		if err != nil {
			return nil, err
		}
		cfg := doc.ServiceConfig
		for _, contactName := range doc.ContactFields {
			f, ok := shared[contactName]
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown contact field %q", ErrInvalidConfig, name, contactName)
			}
			cfg.Fields = append(cfg.Fields, f)
		}
		configs = append(configs, &cfg)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: catalog contains no service forms", ErrInvalidConfig)
	}
	return NewRegistry(configs...)
}

// Lookup returns the config for serviceID. Callers must treat it as read-only.
func (r *Registry) Lookup(serviceID string) (*ServiceConfig, bool) {
	cfg, ok := r.configs[serviceID]
	return cfg, ok
}

// Get is Lookup with an ErrUnknownService error.
func (r *Registry) Get(serviceID string) (*ServiceConfig, error) {
	cfg, ok := r.Lookup(serviceID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, serviceID)
	}
	return cfg, nil
}

// List returns configs in catalog order.
func (r *Registry) List() []*ServiceConfig {
	out := make([]*ServiceConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.configs[id])
	}
	return out
}

// Check validates one config and prepares it for use: conditions default to
// equals, patterns are compiled, and every dependsOn must point at another
// field of the same form without forming a cycle.
func Check(cfg *ServiceConfig) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, cfg.ID, fmt.Sprintf(format, args...)))
	}

	if strings.TrimSpace(cfg.ID) == "" {
		fail("id is required")
	}
	if strings.TrimSpace(cfg.Title) == "" {
		fail("title is required")
	}

	names := make(map[string]int, len(cfg.Fields))
	for i := range cfg.Fields {
		f := &cfg.Fields[i]
		if f.Name == "" {
			fail("field %d has no name", i)
			continue
		}
		if _, dup := names[f.Name]; dup {
			fail("duplicate field %q", f.Name)
		}
		names[f.Name] = i

		if !f.Type.valid() {
			fail("field %q has unknown type %q", f.Name, f.Type)
		}
		if f.Type.HasOptions() && len(f.Options) == 0 {
			fail("field %q of type %s needs options", f.Name, f.Type)
		}
		if f.Validation != nil && f.Validation.Pattern != "" {
			re, err := f.Validation.compile()
			if err != nil {
				fail("field %q has invalid pattern: %v", f.Name, err)
			} else {
				f.Validation.re = re
			}
		}
		if f.DependsOn != nil {
			switch f.DependsOn.Condition {
			case "":
				f.DependsOn.Condition = ConditionEquals
			case ConditionEquals, ConditionIncludes, ConditionNotEquals:
			default:
				fail("field %q has unknown condition %q", f.Name, f.DependsOn.Condition)
			}
		}
	}

	for _, f := range cfg.Fields {
		if f.DependsOn == nil {
			continue
		}
		if f.DependsOn.Field == f.Name {
			fail("field %q depends on itself", f.Name)
			continue
		}
		if _, ok := names[f.DependsOn.Field]; !ok {
			fail("field %q depends on unknown field %q", f.Name, f.DependsOn.Field)
		}
	}
	if len(errs) == 0 {
		if cycle := findCycle(cfg.Fields, names); cycle != "" {
			fail("dependency cycle through %q", cycle)
		}
	}
	return errors.Join(errs...)
}

// findCycle follows each field's single dependsOn edge and reports a field on a cycle.
func findCycle(fields []FieldSpec, index map[string]int) string {
	for _, start := range fields {
		seen := map[string]bool{start.Name: true}
		cur := start
		for cur.DependsOn != nil {
			next := cur.DependsOn.Field
			if seen[next] {
				return next
			}
			seen[next] = true
			cur = fields[index[next]]
		}
	}
	return ""
}

type documentValidator struct {
	service *jsonschema.Schema
	contact *jsonschema.Schema
}

func newDocumentValidator(fsys fs.FS) (*documentValidator, error) {
	data, err := fs.ReadFile(fsys, schemaURL)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = catalogFS.ReadFile("catalog/" + schemaURL)
	}
	if err != nil {
		return nil, fmt.Errorf("forms: read schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("forms: add schema: %w", err)
	}
	service, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("forms: compile schema: %w", err)
	}
	contact, err := compiler.Compile(schemaURL + "#/$defs/contactDocument")
	if err != nil {
		return nil, fmt.Errorf("forms: compile contact schema: %w", err)
	}
	return &documentValidator{service: service, contact: contact}, nil
}

// decode parses YAML, checks it against the catalog schema and decodes it
// through JSON so field values go through Value.UnmarshalJSON.
func (v *documentValidator) decode(name string, data []byte, contact bool) (*document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("forms: parse %s: %w", name, err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("forms: convert %s: %w", name, err)
	}
	var generic any
	if err := json.Unmarshal(jsonData, &generic); err != nil {
		return nil, fmt.Errorf("forms: convert %s: %w", name, err)
	}

	schema := v.service
	if contact {
		schema = v.contact
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}

	var doc document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("forms: decode %s: %w", name, err)
	}
	return &doc, nil
}
