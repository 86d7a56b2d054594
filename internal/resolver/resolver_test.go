package resolver

import (
	"testing"

	"github.com/openregistry/multiasset/internal/catalog"
	"github.com/openregistry/multiasset/internal/storage"
	"github.com/openregistry/multiasset/pkg/types"
)

var issuer = types.Address{0xFF}

// staticActive serves fixed active sequences per token.
type staticActive map[types.TokenID][]types.ResourceID

func (s staticActive) Active(id types.TokenID) []types.ResourceID { return s[id] }

func newCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	cat, err := catalog.NewStore(storage.NewMemory(), nil, nil)
	if err != nil {
		t.Fatalf("catalog.NewStore: %v", err)
	}
	return cat
}

func TestResolve_FirstActive(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Register(issuer, 1, "metaURI", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	r := New(cat, staticActive{1: {1}}, "fallback404")

	got, err := r.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "metaURI" {
		t.Errorf("Resolve = %q, want metaURI", got)
	}
}

func TestResolve_TokenEnumerated(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Register(issuer, 1, "metaURI", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := cat.SetTokenEnumerated(issuer, 1, true); err != nil {
		t.Fatalf("SetTokenEnumerated: %v", err)
	}

	r := New(cat, staticActive{1: {1}, 42: {1}}, "fallback404")

	got, err := r.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "metaURI1" {
		t.Errorf("Resolve = %q, want metaURI1", got)
	}

	got, err = r.Resolve(42)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "metaURI42" {
		t.Errorf("Resolve = %q, want metaURI42", got)
	}
}

func TestResolve_TokenEnumeratedEmptyBase(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Register(issuer, 1, "", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := cat.SetTokenEnumerated(issuer, 1, true); err != nil {
		t.Fatalf("SetTokenEnumerated: %v", err)
	}

	r := New(cat, staticActive{7: {1}}, "fallback404")

	// Empty base URI stays empty; the token id is not appended.
	got, err := r.Resolve(7)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "" {
		t.Errorf("Resolve = %q, want empty", got)
	}
}

func TestResolve_NoActiveUsesFallback(t *testing.T) {
	cat := newCatalog(t)
	r := New(cat, staticActive{}, "fallback404")

	got, err := r.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "fallback404" {
		t.Errorf("Resolve = %q, want fallback404", got)
	}
}

func TestResolveAt(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Register(issuer, 1, "first", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := cat.Register(issuer, 2, "second", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	r := New(cat, staticActive{1: {1, 2}}, "fallback404")

	got, err := r.ResolveAt(1, 1)
	if err != nil {
		t.Fatalf("ResolveAt: %v", err)
	}
	if got != "second" {
		t.Errorf("ResolveAt(1) = %q, want second", got)
	}

	// Past the end: soft fallback, not an error.
	got, err = r.ResolveAt(1, 2)
	if err != nil {
		t.Fatalf("ResolveAt: %v", err)
	}
	if got != "fallback404" {
		t.Errorf("ResolveAt(2) = %q, want fallback404", got)
	}

	got, err = r.ResolveAt(1, -1)
	if err != nil {
		t.Fatalf("ResolveAt: %v", err)
	}
	if got != "fallback404" {
		t.Errorf("ResolveAt(-1) = %q, want fallback404", got)
	}
}

func TestResolveByAttribute_FirstMatchWins(t *testing.T) {
	cat := newCatalog(t)
	for id, uri := range map[types.ResourceID]string{1: "one", 2: "two", 3: "three"} {
		if err := cat.Register(issuer, id, uri, nil); err != nil {
			t.Fatalf("Register(%d): %v", id, err)
		}
	}
	// Resources 2 and 3 both carry rarity=epic; 2 is earlier in active.
	if err := cat.SetCustomData(issuer, 2, 10, []byte("epic")); err != nil {
		t.Fatalf("SetCustomData: %v", err)
	}
	if err := cat.SetCustomData(issuer, 3, 10, []byte("epic")); err != nil {
		t.Fatalf("SetCustomData: %v", err)
	}

	r := New(cat, staticActive{1: {1, 2, 3}}, "fallback404")

	got, err := r.ResolveByAttribute(1, 10, []byte("epic"))
	if err != nil {
		t.Fatalf("ResolveByAttribute: %v", err)
	}
	if got != "two" {
		t.Errorf("ResolveByAttribute = %q, want two", got)
	}
}

func TestResolveByAttribute_NoMatchUsesFallback(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Register(issuer, 1, "one", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := cat.SetCustomData(issuer, 1, 10, []byte("common")); err != nil {
		t.Fatalf("SetCustomData: %v", err)
	}

	r := New(cat, staticActive{1: {1}}, "fallback404")

	got, err := r.ResolveByAttribute(1, 10, []byte("legendary"))
	if err != nil {
		t.Fatalf("ResolveByAttribute: %v", err)
	}
	if got != "fallback404" {
		t.Errorf("ResolveByAttribute = %q, want fallback404", got)
	}

	// Unknown tag behaves the same way.
	got, err = r.ResolveByAttribute(1, 99, []byte("legendary"))
	if err != nil {
		t.Fatalf("ResolveByAttribute: %v", err)
	}
	if got != "fallback404" {
		t.Errorf("unknown tag = %q, want fallback404", got)
	}
}

func TestResolveByAttribute_EmptyWantMatchesAbsent(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Register(issuer, 1, "one", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	r := New(cat, staticActive{1: {1}}, "fallback404")

	// Absent custom data reads as empty bytes, which compares equal to
	// an empty expectation.
	got, err := r.ResolveByAttribute(1, 10, nil)
	if err != nil {
		t.Fatalf("ResolveByAttribute: %v", err)
	}
	if got != "one" {
		t.Errorf("ResolveByAttribute = %q, want one", got)
	}
}

func TestResolveByAttribute_ComposesEnumeratedURI(t *testing.T) {
	cat := newCatalog(t)
	if err := cat.Register(issuer, 1, "base/", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := cat.SetTokenEnumerated(issuer, 1, true); err != nil {
		t.Fatalf("SetTokenEnumerated: %v", err)
	}
	if err := cat.SetCustomData(issuer, 1, 10, []byte("v")); err != nil {
		t.Fatalf("SetCustomData: %v", err)
	}

	r := New(cat, staticActive{5: {1}}, "fallback404")

	got, err := r.ResolveByAttribute(5, 10, []byte("v"))
	if err != nil {
		t.Fatalf("ResolveByAttribute: %v", err)
	}
	if got != "base/5" {
		t.Errorf("ResolveByAttribute = %q, want base/5", got)
	}
}
