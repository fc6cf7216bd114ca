package model

// CatalogItem is one leaf obligation nested under a standard clause
type CatalogItem struct {
	ID    string `json:"id" bson:"id"`
	Title string `json:"title" bson:"title"`
}

// CatalogClause is one standard clause with its nested items. The clause id
// itself is a leaf obligation; expanding it yields the clause id followed by
// its item ids in catalog order.
type CatalogClause struct {
	ID    string        `json:"id" bson:"_id"`
	Title string        `json:"title" bson:"title"`
	Items []CatalogItem `json:"items,omitempty" bson:"items,omitempty"`
}

// Catalog is the requirement catalog: loaded once at startup and treated as
// immutable, read-only, shared-by-reference data
type Catalog struct {
	clauses []CatalogClause
	byID    map[string]*CatalogClause // clause id -> clause
	titles  map[string]string         // leaf id -> title
}

// NewCatalog builds an immutable catalog from the seeded clauses
func NewCatalog(clauses []CatalogClause) *Catalog {
	c := &Catalog{
		clauses: clauses,
		byID:    make(map[string]*CatalogClause, len(clauses)),
		titles:  make(map[string]string),
	}
	for i := range clauses {
		cl := &clauses[i]
		c.byID[cl.ID] = cl
		c.titles[cl.ID] = cl.Title
		for _, item := range cl.Items {
			c.titles[item.ID] = item.Title
		}
	}
	return c
}

// Expand resolves a possibly-partial reference into the ordered list of full
// leaf requirement ids beneath it. A clause id expands to the clause itself
// followed by its items; a leaf item id expands to itself.
func (c *Catalog) Expand(ref string) ([]string, error) {
	if cl, ok := c.byID[ref]; ok {
		leaves := make([]string, 0, len(cl.Items)+1)
		leaves = append(leaves, cl.ID)
		for _, item := range cl.Items {
			leaves = append(leaves, item.ID)
		}
		return leaves, nil
	}
	if _, ok := c.titles[ref]; ok {
		return []string{ref}, nil
	}
	return nil, &LookupError{Ref: ref}
}

// Title returns the canonical title for a leaf requirement id
func (c *Catalog) Title(id string) (string, bool) {
	title, ok := c.titles[id]
	return title, ok
}

// Clauses returns the clauses in catalog order
func (c *Catalog) Clauses() []CatalogClause {
	return c.clauses
}
