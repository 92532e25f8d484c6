// Package service contains the application's business logic, sitting between
// the HTTP handlers and the repositories.
package service

import (
	"sort"

	"stash/internal/models"
)

// CategoryGroup is one category together with its products in display order.
type CategoryGroup struct {
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
}

// AssembleCollections groups products under their categories for rendering.
// Products within a group are ordered by position ascending, with created_at
// as the tie-break so rows that were never reordered still display in insert
// order. Categories with no products are omitted entirely; category order is
// preserved from the input slice.
func AssembleCollections(categories []models.Category, products []models.Product) []CategoryGroup {
	byCategory := make(map[uint][]models.Product, len(categories))
	for _, p := range products {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
	}

	groups := make([]CategoryGroup, 0, len(categories))
	for _, c := range categories {
		items, ok := byCategory[c.ID]
		if !ok {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Position != items[j].Position {
				return items[i].Position < items[j].Position
			}
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
		groups = append(groups, CategoryGroup{Category: c, Products: items})
	}
	return groups
}

// MoveID returns a copy of ids with the element id moved to target index,
// everything else shifted to close the gap. A move to the element's current
// index, or of an id not present, returns ids unchanged.
func MoveID(ids []uint, id uint, to int) []uint {
	from := -1
	for i, v := range ids {
		if v == id {
			from = i
			break
		}
	}
	if from == -1 || to < 0 || to >= len(ids) || from == to {
		return ids
	}
	out := make([]uint, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	out = append(out[:to], append([]uint{id}, out[to:]...)...)
	return out
}
