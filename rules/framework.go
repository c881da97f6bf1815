// Package rules implements the rule framework (descriptor, registry,
// profile registry) and the rule library itself. Grounded on the teacher's
// rules/registry.go ordered-map-by-name shape, generalized to the twelve
// NeTEx rules (plus three supplemental ones recovered from the teacher's
// broader rule catalogue — see SPEC_FULL.md) this spec names.
package rules

import (
	"fmt"

	"github.com/transitdata/netex-validator/document"
	"github.com/transitdata/netex-validator/types"
	"github.com/transitdata/netex-validator/xmlerrors"
)

// Config is the free-form per-rule key/value bag the orchestrator attaches
// before invoking a rule. The orchestrator injects "xsdContent" for every
// cross-document rule.
type Config map[string]interface{}

// Float returns cfg[key] as a float64, or def if absent or not a number.
func (c Config) Float(key string, def float64) float64 {
	if v, ok := c[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

// String returns cfg[key] as a string, or "" if absent.
func (c Config) String(key string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RunFunc is a rule body. It must never throw; the orchestrator wraps a
// recovered panic into a single general error naming the rule.
type RunFunc func(docs []document.Document, cfg Config) []xmlerrors.ValidationError

// Descriptor is a rule's immutable identity plus its run function. Rules
// are stateless values — all mutation lives inside one Run invocation.
type Descriptor struct {
	Name        string
	DisplayName string
	Description string
	Category    string
	Formats     []types.Format
	Run         RunFunc
}

// SupportsFormat reports whether d applies to format f.
func (d Descriptor) SupportsFormat(f types.Format) bool {
	for _, ff := range d.Formats {
		if ff == f {
			return true
		}
	}
	return false
}

// crossDocumentRuleNames is the fixed set the orchestrator partitions
// enabled rules against. netexUniqueConstraints lives here purely so the
// orchestrator feeds it xsdContent; the rule itself still enforces
// per-document scoping internally (see its doc comment).
var crossDocumentRuleNames = map[string]bool{
	"everyLineIsReferenced":               true,
	"everyStopPlaceIsReferenced":          true,
	"locationsAreReferencingTheSamePoint": true,
	"netexKeyRefConstraints":              true,
	"netexPrerequisitesAreSatisfied":      true,
	"netexUniqueConstraints":              true,
}

// IsCrossDocument reports whether name belongs to the fixed cross-document
// rule set.
func IsCrossDocument(name string) bool {
	return crossDocumentRuleNames[name]
}

// Registry is an ordered mapping from rule name to Descriptor. Ordering is
// insertion order, matching the determinism testable property: rules fire
// in registry order within a file.
type Registry struct {
	order []string
	byName map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Register adds d to the registry, preserving insertion order.
func (r *Registry) Register(d Descriptor) {
	if _, exists := r.byName[d.Name]; !exists {
		r.order = append(r.order, d.Name)
	}
	r.byName[d.Name] = d
}

// Get returns the rule named name, or an error if it is not registered.
func (r *Registry) Get(name string) (Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("rules: unknown rule %q", name)
	}
	return d, nil
}

// ForFormat returns every registered rule applicable to f, in registry
// order.
func (r *Registry) ForFormat(f types.Format) []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		d := r.byName[name]
		if d.SupportsFormat(f) {
			out = append(out, d)
		}
	}
	return out
}

// Names returns every registered rule name in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Profile is a named (format, schema, rule-selection) triple.
type Profile struct {
	Name          string
	DisplayName   string
	Format        types.Format
	SchemaID      string // empty means skip XSD
	EnabledRules  []string
}

// ProfileRegistry maps profile names to profiles.
type ProfileRegistry struct {
	byName map[string]Profile
}

// NewProfileRegistry creates an empty profile registry.
func NewProfileRegistry() *ProfileRegistry {
	return &ProfileRegistry{byName: make(map[string]Profile)}
}

// Register adds p to the registry.
func (r *ProfileRegistry) Register(p Profile) {
	r.byName[p.Name] = p
}

// Get returns the profile named name, or an error if it is not registered.
func (r *ProfileRegistry) Get(name string) (Profile, error) {
	p, ok := r.byName[name]
	if !ok {
		return Profile{}, fmt.Errorf("rules: unknown profile %q", name)
	}
	return p, nil
}

// DefaultProfileName returns the default profile name for a format:
// netex -> netex-fast-v1.2, siri -> siri-v2.2.
func DefaultProfileName(f types.Format) string {
	switch f {
	case types.FormatSiri:
		return "siri-v2.2"
	default:
		return "netex-fast-v1.2"
	}
}
