package normalize

import (
	"strings"

	"dernek/internal/core"
)

// Fallback labels for dangling references.
const (
	UnknownPerson  = "Bilinmeyen Kişi"
	UnknownProduct = "Bilinmeyen Ürün"
)

// Lookup maps an id to its display label. Build one per aggregation pass
// from the freshly fetched collection and drop it afterwards.
type Lookup map[string]string

// PersonNames indexes people by id.
func PersonNames(people []core.Person) Lookup {
	l := make(Lookup, len(people))
	for _, p := range people {
		l[p.ID] = p.Name
	}
	return l
}

// ProductNames indexes products by id.
func ProductNames(products []core.Product) Lookup {
	l := make(Lookup, len(products))
	for _, p := range products {
		l[p.ID] = p.Name
	}
	return l
}

// Resolve returns the label for id, or fallback when the id is unknown or
// its label is blank.
func (l Lookup) Resolve(id, fallback string) string {
	if v, ok := l[id]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
