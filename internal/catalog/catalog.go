// Package catalog holds the static set of sweet ideas the bot samples from.
// The content ships embedded in the binary; an empty catalog is a startup
// configuration error, never a runtime one.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/AdamLukas17/something-sweet/assets"
	"github.com/AdamLukas17/something-sweet/internal/domain"
)

// Idea is one catalog entry. Read-only to the rest of the system.
type Idea struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Catalog is a non-empty, immutable list of ideas.
type Catalog struct {
	ideas []Idea
}

// ErrEmpty means the embedded data contains no ideas.
var ErrEmpty = errors.New("catalog is empty")

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return load(assets.IdeasFS, assets.IdeasPath)
}

func load(fsys fs.FS, path string) (*Catalog, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc struct {
		Ideas []Idea `json:"ideas"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Ideas) == 0 {
		return nil, ErrEmpty
	}
	return &Catalog{ideas: doc.Ideas}, nil
}

// Len returns the number of ideas.
func (c *Catalog) Len() int { return len(c.ideas) }

// Pick draws one idea uniformly at random, with replacement.
func (c *Catalog) Pick(r domain.Rand) Idea {
	return c.ideas[r.Intn(len(c.ideas))]
}

// Render formats an idea into the HTML message body sent to users.
func Render(i Idea) string {
	category := strings.ReplaceAll(i.Category, "_", " ")
	return fmt.Sprintf(
		"💕 <b>Something Sweet for Today</b>\n\n<b>%s</b>\n\n%s\n\n<i>Category: %s</i>",
		i.Title, i.Description, category,
	)
}
