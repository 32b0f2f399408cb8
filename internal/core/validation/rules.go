package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb/planar"
)

// DefaultRules returns the built-in rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		MissingGenusRule{},
		GenusSpeciesRule{Defaults: GenusDefaultSpecies},
		DeprecatedSpeciesRule{Table: DeprecatedSpecies},
		ReferenceRule{Key: "species", Table: SpeciesReference},
		CultivarPropagationRule{},
		ReferenceRule{Key: "taxon:cultivar", Table: CultivarReference},
		OrchardContainmentRule{Key: DenotationKey, Value: DenotationAgricultural},
	}
}

func present(tags map[string]string, key string) bool {
	return strings.TrimSpace(tags[key]) != ""
}

// MissingGenusRule asks for a classification when a tree has no genus.
type MissingGenusRule struct{}

func (MissingGenusRule) Name() string { return "missing-genus" }

func (MissingGenusRule) Check(in Input) []Issue {
	if present(in.Tags, "genus") {
		return nil
	}
	return []Issue{{
		Message:  "Tree has no genus. Identify the tree and add genus and species.",
		Severity: SeverityTodo,
	}}
}

// GenusSpeciesRule flags genera that must carry a species.
type GenusSpeciesRule struct {
	Defaults map[string]string
}

func (GenusSpeciesRule) Name() string { return "genus-requires-species" }

func (r GenusSpeciesRule) Check(in Input) []Issue {
	if present(in.Tags, "species") {
		return nil
	}
	species, ok := r.Defaults[in.Tags["genus"]]
	if !ok {
		return nil
	}
	return []Issue{{
		Message:  fmt.Sprintf("Tree has no species. Maybe %q?", species),
		Severity: SeverityError,
		Patch:    []KV{{Key: "species", Value: species}},
	}}
}

// DeprecatedSpeciesRule rewrites legacy species spellings.
type DeprecatedSpeciesRule struct {
	Table map[string]Correction
}

func (DeprecatedSpeciesRule) Name() string { return "deprecated-species" }

func (r DeprecatedSpeciesRule) Check(in Input) []Issue {
	current := in.Tags["species"]
	fix, ok := r.Table[current]
	if !ok {
		return nil
	}
	return []Issue{{
		Message:  fmt.Sprintf("Species %q is written incorrectly. Use %q.", current, fix.Species),
		Severity: SeverityWarning,
		Patch: []KV{
			{Key: "species", Value: fix.Species},
			{Key: "genus", Value: fix.Genus},
		},
	}}
}

// ReferenceRule compares a tree against the expected tags for the value of Key.
// One warning is emitted per missing or differing tag, in key order.
type ReferenceRule struct {
	Key   string
	Table map[string]map[string]string
}

func (r ReferenceRule) Name() string { return "reference:" + r.Key }

func (r ReferenceRule) Check(in Input) []Issue {
	name := in.Tags[r.Key]
	expected, ok := r.Table[name]
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var issues []Issue
	for _, k := range keys {
		want := expected[k]
		got, has := in.Tags[k]
		switch {
		case !has || strings.TrimSpace(got) == "":
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("Missing %s for %s. Should be %q.", k, name, want),
				Severity: SeverityWarning,
				Patch:    []KV{{Key: k, Value: want}},
			})
		case got != want:
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("Wrong %s for %s. Should be %q, not %q.", k, name, want, got),
				Severity: SeverityWarning,
				Patch:    []KV{{Key: k, Value: want}},
			})
		}
	}
	return issues
}

// CultivarPropagationRule copies a free-text cultivar into taxon:cultivar.
type CultivarPropagationRule struct{}

func (CultivarPropagationRule) Name() string { return "cultivar-propagation" }

func (CultivarPropagationRule) Check(in Input) []Issue {
	if !present(in.Tags, "cultivar") || present(in.Tags, "taxon:cultivar") {
		return nil
	}
	value := strings.TrimSpace(in.Tags["cultivar"])
	return []Issue{{
		Message:  fmt.Sprintf("Cultivar %q is only in the cultivar tag. Copy it to taxon:cultivar.", value),
		Severity: SeverityTodo,
		Patch:    []KV{{Key: "taxon:cultivar", Value: value}},
	}}
}

// OrchardContainmentRule suggests a denotation for trees standing inside an orchard.
type OrchardContainmentRule struct {
	Key   string
	Value string
}

func (OrchardContainmentRule) Name() string { return "orchard-containment" }

func (r OrchardContainmentRule) Check(in Input) []Issue {
	if present(in.Tags, r.Key) {
		return nil
	}
	for _, o := range in.Orchards {
		if len(o.Ring) < 3 {
			continue
		}
		if !o.Ring.Bound().Contains(in.Point) {
			continue
		}
		if planar.RingContains(o.Ring, in.Point) {
			return []Issue{{
				Message:  fmt.Sprintf("Tree stands in an orchard. Set %s=%s.", r.Key, r.Value),
				Severity: SeverityTodo,
				Patch:    []KV{{Key: r.Key, Value: r.Value}},
			}}
		}
	}
	return nil
}
