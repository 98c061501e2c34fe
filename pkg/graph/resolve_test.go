package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/grafo-kg/grafo/pkg/common"
)

type fakeLookup struct {
	entries map[common.ResolutionKey]string
	err     error
}

func (f *fakeLookup) LookupEntityByKey(_ context.Context, typ common.EntityType, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.entries[common.ResolutionKey{Type: typ, Name: name}], nil
}

func addAll(t *testing.T, r *resolver, mentions []extractEntity, unit int) {
	t.Helper()
	for _, m := range mentions {
		if err := r.addMention(context.Background(), m, unit); err != nil {
			t.Fatalf("addMention(%q) error = %v", m.Name, err)
		}
	}
}

func TestResolverIdentityIsOrderIndependent(t *testing.T) {
	mentions := []extractEntity{
		{Name: "Dr. Maria Silva", Type: "Person"},
		{Name: "maria silva", Type: "Person"},
		{Name: "The Acme Corporation", Type: "Organization"},
		{Name: "Acme Corporation", Type: "Organization"},
	}

	forward := newResolver(0.84, nil, &RunSummary{})
	addAll(t, forward, mentions, 1)

	reversed := newResolver(0.84, nil, &RunSummary{})
	for i := len(mentions) - 1; i >= 0; i-- {
		if err := reversed.addMention(context.Background(), mentions[i], 1); err != nil {
			t.Fatalf("addMention error = %v", err)
		}
	}

	if len(forward.entities) != 2 || len(reversed.entities) != 2 {
		t.Fatalf("got %d and %d entities, want 2 and 2",
			len(forward.entities), len(reversed.entities))
	}
}

func TestResolverFirstMentionWinsDisplayName(t *testing.T) {
	r := newResolver(0.84, nil, &RunSummary{})
	addAll(t, r, []extractEntity{
		{Name: "maria silva", Type: "Person"},
		{Name: "Dr. Maria Silva", Type: "Person"},
	}, 1)

	if len(r.entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(r.entities))
	}
	if r.entities[0].Name != "maria silva" {
		t.Errorf("display name = %q, want the first surface form", r.entities[0].Name)
	}
}

func TestResolverTypeScopesIdentity(t *testing.T) {
	r := newResolver(0.84, nil, &RunSummary{})
	addAll(t, r, []extractEntity{
		{Name: "Lisbon", Type: "Location"},
		{Name: "Lisbon", Type: "Organization"},
	}, 1)

	if len(r.entities) != 2 {
		t.Fatalf("same name with different types must stay distinct, got %d entities", len(r.entities))
	}
}

func TestResolverSimilarityMerge(t *testing.T) {
	tests := []struct {
		name  string
		first string
		then  string
		want  int
	}{
		{
			name:  "near-identical merges",
			first: "Acme Corporation",
			then:  "Acme Corporations",
			want:  1,
		},
		{
			name:  "distinct stays distinct",
			first: "Acme Corporation",
			then:  "橙子 Industries",
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(0.84, nil, &RunSummary{})
			addAll(t, r, []extractEntity{
				{Name: tt.first, Type: "Organization"},
				{Name: tt.then, Type: "Organization"},
			}, 1)
			if len(r.entities) != tt.want {
				t.Errorf("got %d entities, want %d", len(r.entities), tt.want)
			}
		})
	}
}

func TestResolverSimilarityIsTypeScoped(t *testing.T) {
	r := newResolver(0.84, nil, &RunSummary{})
	addAll(t, r, []extractEntity{
		{Name: "Santiago", Type: "Person"},
		{Name: "Santiago", Type: "Location"},
	}, 1)

	if len(r.entities) != 2 {
		t.Fatalf("similarity must never merge across types, got %d entities", len(r.entities))
	}
}

func TestResolverAliasAbsorption(t *testing.T) {
	r := newResolver(0.84, nil, &RunSummary{})
	addAll(t, r, []extractEntity{
		{Name: "International Business Machines", Type: "Organization", Aliases: []string{"IBM"}},
		{Name: "IBM", Type: "Organization"},
	}, 1)

	if len(r.entities) != 1 {
		t.Fatalf("alias mention should fold into existing entity, got %d entities", len(r.entities))
	}
	e := r.entities[0]
	if !containsFold(e.Aliases, "IBM") {
		t.Errorf("aliases = %v, want IBM recorded", e.Aliases)
	}
}

func TestResolverLocalizedLabelKept(t *testing.T) {
	r := newResolver(0.84, nil, &RunSummary{})
	addAll(t, r, []extractEntity{
		{Name: "Lisbon", Type: "Location"},
		{Name: "Lisbon", Type: "Location", Localized: "Lisboa"},
		{Name: "Lisbon", Type: "Location", Localized: "Lissabon"},
	}, 1)

	if got := r.entities[0].Localized; got != "Lisboa" {
		t.Errorf("Localized = %q, want the first non-empty label", got)
	}
}

func TestResolverDropsUnknownType(t *testing.T) {
	summary := &RunSummary{}
	r := newResolver(0.84, nil, summary)
	addAll(t, r, []extractEntity{
		{Name: "Something", Type: "Galaxy"},
		{Name: "  ", Type: "Person"},
	}, 1)

	if len(r.entities) != 0 {
		t.Fatalf("got %d entities, want 0", len(r.entities))
	}
	if len(summary.DroppedMentions) != 2 {
		t.Errorf("DroppedMentions = %v, want both mentions accounted", summary.DroppedMentions)
	}
}

func TestResolverUsesPersistedLookup(t *testing.T) {
	lookup := &fakeLookup{entries: map[common.ResolutionKey]string{
		{Type: common.EntityPerson, Name: "maria silva"}: "stored-id",
	}}
	r := newResolver(0.84, lookup, &RunSummary{})
	addAll(t, r, []extractEntity{{Name: "Dr. Maria Silva", Type: "Person"}}, 1)

	if len(r.entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(r.entities))
	}
	if r.entities[0].ID != "stored-id" {
		t.Errorf("ID = %q, want the persisted identity reused", r.entities[0].ID)
	}
}

func TestResolverLookupFailureIsNotFatal(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}
	r := newResolver(0.84, lookup, &RunSummary{})
	addAll(t, r, []extractEntity{{Name: "Maria Silva", Type: "Person"}}, 1)

	if len(r.entities) != 1 {
		t.Fatalf("got %d entities, want a fresh identity despite lookup failure", len(r.entities))
	}
}

func TestResolveSurface(t *testing.T) {
	r := newResolver(0.84, nil, &RunSummary{})
	addAll(t, r, []extractEntity{
		{Name: "Dr. Maria Silva", Type: "Person", Aliases: []string{"Maria"}},
	}, 1)

	for _, surface := range []string{"Maria Silva", "maria silva", "Maria"} {
		if e := r.resolveSurface(surface); e == nil {
			t.Errorf("resolveSurface(%q) = nil, want a match", surface)
		}
	}
	if e := r.resolveSurface("João Costa"); e != nil {
		t.Errorf("resolveSurface of unknown name = %v, want nil", e)
	}
}

func TestUnitEvidenceAccumulates(t *testing.T) {
	r := newResolver(0.84, nil, &RunSummary{})
	addAll(t, r, []extractEntity{{Name: "Acme", Type: "Organization"}}, 2)
	addAll(t, r, []extractEntity{{Name: "Acme", Type: "Organization"}}, 1)
	addAll(t, r, []extractEntity{{Name: "Acme", Type: "Organization"}}, 2)

	got := r.entities[0].Units
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Units = %v, want sorted unique [1 2]", got)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abc", "abc", 1},
		{"abc", "", 0},
		{"abcd", "abce", 0.75},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
