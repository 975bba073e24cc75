package recipe

import (
	"fmt"

	"github.com/samber/lo"
)

// Book is the ordered set of recipes produced by one evaluation.
type Book struct {
	Recipes   []*Recipe      `json:"recipes"`
	NameIndex map[string]int `json:"name_index"`
}

// Recipe describes how to build one named mesh.
type Recipe struct {
	Name   string  `json:"name"`
	Source Source  `json:"source"`
	Stages []Stage `json:"stages,omitempty"`
}

// New creates an empty Book.
func New() *Book {
	return &Book{NameIndex: make(map[string]int)}
}

// Add appends r to the book. It does not check for duplicate names; the
// index keeps the first recipe with a given name and Validate reports the
// rest.
func (b *Book) Add(r *Recipe) {
	if _, ok := b.NameIndex[r.Name]; !ok && r.Name != "" {
		b.NameIndex[r.Name] = len(b.Recipes)
	}
	b.Recipes = append(b.Recipes, r)
}

// Lookup returns the recipe with the given name, or nil.
func (b *Book) Lookup(name string) *Recipe {
	i, ok := b.NameIndex[name]
	if !ok || i >= len(b.Recipes) {
		return nil
	}
	return b.Recipes[i]
}

// MustLookup returns the recipe with the given name, or panics.
func (b *Book) MustLookup(name string) *Recipe {
	r := b.Lookup(name)
	if r == nil {
		panic(fmt.Sprintf("recipe: no recipe named %q", name))
	}
	return r
}

// Len returns the number of recipes.
func (b *Book) Len() int {
	return len(b.Recipes)
}

// Names returns the recipe names in book order.
func (b *Book) Names() []string {
	return lo.Map(b.Recipes, func(r *Recipe, _ int) string { return r.Name })
}
