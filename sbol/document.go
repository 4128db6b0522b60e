package sbol

import (
	"cmp"
	"slices"

	sbolvocab "github.com/cellocad/cello-webapp/vocabulary/sbol"
)

// Document is an in-memory SBOL document indexed by URI.
type Document struct {
	componentDefinitions map[string]*ComponentDefinition
	sequences            map[string]*Sequence
	moduleDefinitions    map[string]*ModuleDefinition
	attachments          map[string]*Attachment
	collections          map[string]*Collection
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		componentDefinitions: make(map[string]*ComponentDefinition),
		sequences:            make(map[string]*Sequence),
		moduleDefinitions:    make(map[string]*ModuleDefinition),
		attachments:          make(map[string]*Attachment),
		collections:          make(map[string]*Collection),
	}
}

// AddComponentDefinition adds or replaces a component definition.
func (d *Document) AddComponentDefinition(cd *ComponentDefinition) {
	d.componentDefinitions[cd.URI] = cd
}

// AddSequence adds or replaces a sequence.
func (d *Document) AddSequence(s *Sequence) {
	d.sequences[s.URI] = s
}

// AddModuleDefinition adds or replaces a module definition.
func (d *Document) AddModuleDefinition(md *ModuleDefinition) {
	d.moduleDefinitions[md.URI] = md
}

// AddAttachment adds or replaces an attachment.
func (d *Document) AddAttachment(a *Attachment) {
	d.attachments[a.URI] = a
}

// AddCollection adds or replaces a collection.
func (d *Document) AddCollection(c *Collection) {
	d.collections[c.URI] = c
}

// ComponentDefinition returns the component definition with uri, or nil.
func (d *Document) ComponentDefinition(uri string) *ComponentDefinition {
	return d.componentDefinitions[uri]
}

// Sequence returns the sequence with uri, or nil.
func (d *Document) Sequence(uri string) *Sequence {
	return d.sequences[uri]
}

// ModuleDefinition returns the module definition with uri, or nil.
func (d *Document) ModuleDefinition(uri string) *ModuleDefinition {
	return d.moduleDefinitions[uri]
}

// Attachment returns the attachment with uri, or nil.
func (d *Document) Attachment(uri string) *Attachment {
	return d.attachments[uri]
}

// Collection returns the collection with uri, or nil.
func (d *Document) Collection(uri string) *Collection {
	return d.collections[uri]
}

// ComponentDefinitions returns all component definitions ordered by URI.
func (d *Document) ComponentDefinitions() []*ComponentDefinition {
	return sortedValues(d.componentDefinitions, func(cd *ComponentDefinition) string { return cd.URI })
}

// RootComponentDefinitions returns the component definitions that are not
// instantiated as a sub-component of another definition, ordered by URI.
func (d *Document) RootComponentDefinitions() []*ComponentDefinition {
	used := make(map[string]bool)
	for _, cd := range d.componentDefinitions {
		for _, c := range cd.Components {
			used[c.Definition] = true
		}
	}
	var roots []*ComponentDefinition
	for _, cd := range d.ComponentDefinitions() {
		if !used[cd.URI] {
			roots = append(roots, cd)
		}
	}
	return roots
}

// ModuleDefinitions returns all module definitions ordered by URI.
func (d *Document) ModuleDefinitions() []*ModuleDefinition {
	return sortedValues(d.moduleDefinitions, func(md *ModuleDefinition) string { return md.URI })
}

// RootModuleDefinitions returns the module definitions that are not
// instantiated as a module of another definition, ordered by URI.
func (d *Document) RootModuleDefinitions() []*ModuleDefinition {
	used := make(map[string]bool)
	for _, md := range d.moduleDefinitions {
		for _, m := range md.Modules {
			used[m.Definition] = true
		}
	}
	var roots []*ModuleDefinition
	for _, md := range d.ModuleDefinitions() {
		if !used[md.URI] {
			roots = append(roots, md)
		}
	}
	return roots
}

// Attachments returns all attachments ordered by URI.
func (d *Document) Attachments() []*Attachment {
	return sortedValues(d.attachments, func(a *Attachment) string { return a.URI })
}

// Collections returns all collections ordered by URI.
func (d *Document) Collections() []*Collection {
	return sortedValues(d.collections, func(c *Collection) string { return c.URI })
}

// ParticipantDefinition resolves the component definition behind a
// participation of an interaction in md. It returns nil when the functional
// component or its definition is not in the document.
func (d *Document) ParticipantDefinition(md *ModuleDefinition, p *Participation) *ComponentDefinition {
	fc := md.FunctionalComponent(p.Participant)
	if fc == nil {
		return nil
	}
	return d.componentDefinitions[fc.Definition]
}

// SortedComponents returns the sub-components of cd in sequence order.
// Components are ordered by the start of their first located sequence
// annotation; unlocated components follow in precedes-constraint order and
// ties are broken by display id.
func (d *Document) SortedComponents(cd *ComponentDefinition) []*Component {
	start := make(map[string]int)
	for _, sa := range cd.SequenceAnnotations {
		if sa.Component == "" {
			continue
		}
		for _, loc := range sa.Locations {
			if pos, ok := loc.Position(); ok {
				if cur, seen := start[sa.Component]; !seen || pos < cur {
					start[sa.Component] = pos
				}
			}
		}
	}

	rank := precedenceRank(cd)

	out := slices.Clone(cd.Components)
	slices.SortStableFunc(out, func(a, b *Component) int {
		sa, aok := start[a.URI]
		sb, bok := start[b.URI]
		switch {
		case aok && bok:
			if c := cmp.Compare(sa, sb); c != 0 {
				return c
			}
		case aok:
			return -1
		case bok:
			return 1
		}
		if c := cmp.Compare(rank[a.URI], rank[b.URI]); c != 0 {
			return c
		}
		return cmp.Compare(a.DisplayID, b.DisplayID)
	})
	return out
}

// precedenceRank assigns each component the length of the longest chain of
// "precedes" constraints leading to it. Cycles are cut by the depth bound.
func precedenceRank(cd *ComponentDefinition) map[string]int {
	rank := make(map[string]int)
	for range cd.Components {
		changed := false
		for _, sc := range cd.SequenceConstraints {
			if sc.Restriction != sbolvocab.RestrictionPrecedes {
				continue
			}
			if r := rank[sc.Subject] + 1; r > rank[sc.Object] {
				rank[sc.Object] = r
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return rank
}

func sortedValues[T any](m map[string]T, key func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(key(a), key(b)) })
	return out
}
