// Package viewmodel provides the generic view-model driven by the CLI: one
// Page per entry of the view registry.
package viewmodel

import (
	"sync"

	"github.com/zjrosen/twinview/internal/locator"
	"github.com/zjrosen/twinview/internal/navigation"
)

// Page is a view-model named after a registry entry. It resolves through
// the registry by Name, so a file-driven registry needs no Go types.
type Page struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`

	mu  sync.Mutex
	nav *navigation.Navigator
}

var (
	_ locator.Named        = (*Page)(nil)
	_ navigation.Navigable = (*Page)(nil)
)

// ViewName implements locator.Named.
func (p *Page) ViewName() string { return p.Name }

// SetNavigator implements navigation.Navigable.
func (p *Page) SetNavigator(n *navigation.Navigator) {
	p.mu.Lock()
	p.nav = n
	p.mu.Unlock()
}

// Navigator returns the navigator showing the page, if any.
func (p *Page) Navigator() *navigation.Navigator {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav
}

// Label is the display name, "Name" or "Name/ID".
func (p *Page) Label() string {
	if p.ID == "" {
		return p.Name
	}
	return p.Name + "/" + p.ID
}

// Options returns the navigation options that select this page's entry.
func (p *Page) Options() []navigation.Option {
	if p.ID == "" {
		return nil
	}
	return []navigation.Option{navigation.WithID(p.ID)}
}

// Pages builds one Page per registry entry, in order.
func Pages(entries []locator.Entry) []*Page {
	pages := make([]*Page, 0, len(entries))
	for _, e := range entries {
		pages = append(pages, &Page{Name: e.Name, ID: e.ID})
	}
	return pages
}

// Find returns the page whose Label matches label.
func Find(pages []*Page, label string) (*Page, bool) {
	for _, p := range pages {
		if p.Label() == label {
			return p, true
		}
	}
	return nil, false
}
