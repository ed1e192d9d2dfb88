// Package render turns a normalised document into page regions and the full
// page markup.
package render

import (
	"html/template"

	"github.com/starford/aquatrack/internal/lightbox"
)

// Section names a display region.
type Section string

// Page regions in display order.
const (
	SectionTank         Section = "tank"
	SectionResidents    Section = "residents"
	SectionMeasurements Section = "measurements"
	SectionEvents       Section = "events"
	SectionPhotos       Section = "photos"
)

var sectionTitles = map[Section]string{
	SectionTank:         "Tank",
	SectionResidents:    "Residents",
	SectionMeasurements: "Measurements",
	SectionEvents:       "Events",
	SectionPhotos:       "Photos",
}

var sectionOrder = []Section{SectionTank, SectionResidents, SectionMeasurements, SectionEvents, SectionPhotos}

// Region is one display region of the page.
type Region struct {
	ID     string
	Title  string
	Hidden bool
	Body   template.HTML
}

// Thumb is a preview strip entry.
type Thumb struct {
	Trigger lightbox.Trigger
	Href    string
	Image   template.HTML
}

// Context holds everything a render writes to. One is built per page view
// and handed to every renderer.
type Context struct {
	regions  map[Section]*Region
	HasData  bool
	Preview  []Thumb
	Overlay  *Overlay
	Lightbox *lightbox.Lightbox

	triggers map[string]lightbox.Trigger
}

// NewContext returns a context with every region hidden.
func NewContext() *Context {
	c := &Context{
		regions:  make(map[Section]*Region, len(sectionOrder)),
		triggers: make(map[string]lightbox.Trigger),
	}
	for _, s := range sectionOrder {
		c.regions[s] = &Region{ID: string(s) + "Section", Title: sectionTitles[s], Hidden: true}
	}
	c.Overlay = newOverlay(c)
	c.Lightbox = lightbox.New(c.Overlay)
	return c
}

// Region returns the region for s.
func (c *Context) Region(s Section) *Region {
	return c.regions[s]
}

// Regions returns all regions in display order.
func (c *Context) Regions() []*Region {
	out := make([]*Region, len(sectionOrder))
	for i, s := range sectionOrder {
		out[i] = c.regions[s]
	}
	return out
}

// Visible reports whether any region is showing.
func (c *Context) Visible() bool {
	for _, r := range c.regions {
		if !r.Hidden {
			return true
		}
	}
	return false
}

// Clear hides and empties every region and closes the lightbox.
func (c *Context) Clear() {
	c.Lightbox.Close()
	for _, r := range c.regions {
		r.Hidden = true
		r.Body = ""
	}
	c.HasData = false
	c.Preview = nil
	clear(c.triggers)
}

func (c *Context) show(s Section, body string) {
	r := c.regions[s]
	r.Body = template.HTML(body) //nolint:gosec // every document value is escaped before concatenation
	r.Hidden = false
}

func (c *Context) register(t lightbox.Trigger) {
	c.triggers[t.ID] = t
}

// Trigger returns the lightbox trigger rendered under id.
func (c *Context) Trigger(id string) (lightbox.Trigger, bool) {
	t, ok := c.triggers[id]
	return t, ok
}
