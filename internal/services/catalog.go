package services

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/domain"
	"github.com/tbourn/go-pet-backend/internal/repo"
	"github.com/tbourn/go-pet-backend/internal/search"
)

// searchStopwords are chat verbs that carry no item meaning.
var searchStopwords = []string{"buy", "get", "a", "an", "the", "some", "please", "купить"}

// Catalog is the read-only shop and evolution data, loaded once at startup.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	items  []domain.ShopItem
	byID   map[int64]domain.ShopItem
	stages map[domain.Species][]domain.EvolutionStage
	index  search.Index
}

// LoadCatalog reads the seeded catalog tables.
func LoadCatalog(ctx context.Context, db *gorm.DB) (*Catalog, error) {
	items, err := repo.ListShopItems(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load shop items: %w", err)
	}
	stages, err := repo.ListEvolutionStages(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load evolution stages: %w", err)
	}
	return NewCatalog(items, stages), nil
}

// NewCatalog builds a Catalog from rows. Inputs are copied.
func NewCatalog(items []domain.ShopItem, stages []domain.EvolutionStage) *Catalog {
	c := &Catalog{
		items:  append([]domain.ShopItem(nil), items...),
		byID:   make(map[int64]domain.ShopItem, len(items)),
		stages: make(map[domain.Species][]domain.EvolutionStage),
	}
	sort.Slice(c.items, func(i, j int) bool { return c.items[i].ID < c.items[j].ID })

	docs := make([]search.Doc, 0, len(c.items))
	for _, it := range c.items {
		c.byID[it.ID] = it
		docs = append(docs, search.Doc{ID: it.ID, Title: it.Name, Body: it.Description})
	}
	for _, s := range stages {
		c.stages[s.Species] = append(c.stages[s.Species], s)
	}
	for sp := range c.stages {
		rows := c.stages[sp]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Stage < rows[j].Stage })
	}
	c.index = search.NewIndex(docs, search.WithStopwords(searchStopwords), search.WithPrefixMatch(4))
	return c
}

// Items returns the shop in id order.
func (c *Catalog) Items() []domain.ShopItem {
	return append([]domain.ShopItem(nil), c.items...)
}

// Item looks up one shop item.
func (c *Catalog) Item(id int64) (domain.ShopItem, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Stages returns the species' stage table ordered by stage.
func (c *Catalog) Stages(sp domain.Species) []domain.EvolutionStage {
	return append([]domain.EvolutionStage(nil), c.stages[sp]...)
}

// Search returns up to k items best matching free text.
func (c *Catalog) Search(query string, k int) []domain.ShopItem {
	res := c.index.TopK(query, k)
	out := make([]domain.ShopItem, 0, len(res))
	for _, r := range res {
		if it, ok := c.byID[r.ID]; ok {
			out = append(out, it)
		}
	}
	return out
}
