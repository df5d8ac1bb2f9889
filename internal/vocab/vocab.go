// Package vocab holds the process-wide canonical vocabulary cache: the
// known team names, construction codes, places and events an extracted
// entity is validated against (§4.2, §5 "process-wide state"). It is
// loaded once at startup and only ever replaced wholesale by Reload, never
// mutated in place, so concurrent readers never observe a torn snapshot.
package vocab

import (
	"context"
	"sync/atomic"

	"gorm.io/gorm"
)

// snapshot is one immutable generation of the vocabulary.
type snapshot struct {
	teams             []string
	constructionCodes []string
	places            []string
	events            []string
}

// Cache is the process-wide vocabulary, safe for concurrent read access
// from every request goroutine.
type Cache struct {
	db  *gorm.DB
	ptr atomic.Pointer[snapshot]
}

// New creates an empty Cache; call Reload before serving requests.
func New(db *gorm.DB) *Cache {
	c := &Cache{db: db}
	c.ptr.Store(&snapshot{})
	return c
}

// Reload re-reads every vocabulary table and atomically swaps the
// snapshot in. The only writers of process-wide vocabulary state are
// startup and this explicit reload path (§5 "mutation discipline").
func (c *Cache) Reload(ctx context.Context) error {
	next := &snapshot{}

	if err := c.db.WithContext(ctx).
		Table("colles").Distinct().Pluck("name", &next.teams).Error; err != nil {
		return err
	}
	if err := c.db.WithContext(ctx).
		Table("puntuacions").Distinct().Pluck("castell_code", &next.constructionCodes).Error; err != nil {
		return err
	}
	if err := c.db.WithContext(ctx).
		Table("events").Distinct().Pluck("city", &next.places).Error; err != nil {
		return err
	}
	if err := c.db.WithContext(ctx).
		Table("events").Distinct().Pluck("name", &next.events).Error; err != nil {
		return err
	}

	c.ptr.Store(next)
	return nil
}

func (c *Cache) current() *snapshot { return c.ptr.Load() }

// Teams implements entities.Vocabulary.
func (c *Cache) Teams() []string { return c.current().teams }

// ConstructionCodes implements entities.Vocabulary.
func (c *Cache) ConstructionCodes() []string { return c.current().constructionCodes }

// Places implements entities.Vocabulary.
func (c *Cache) Places() []string { return c.current().places }

// Events implements entities.Vocabulary.
func (c *Cache) Events() []string { return c.current().events }

// HasTeam reports whether name exactly matches a known team, used to
// validate LLM-extracted entities before they're trusted (§4.3).
func (c *Cache) HasTeam(name string) bool { return contains(c.current().teams, name) }

// HasConstructionCode reports whether code is a known construction code.
func (c *Cache) HasConstructionCode(code string) bool {
	return contains(c.current().constructionCodes, code)
}

// HasPlace reports whether name is a known place.
func (c *Cache) HasPlace(name string) bool { return contains(c.current().places, name) }

// HasEvent reports whether name is a known event.
func (c *Cache) HasEvent(name string) bool { return contains(c.current().events, name) }

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
