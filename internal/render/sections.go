package render

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"

	"github.com/starford/aquatrack/internal/format"
	"github.com/starford/aquatrack/internal/models"
)

// ResidentLabels maps resident types to group headings.
var ResidentLabels = map[string]string{
	models.ResidentFish:   "Fish",
	models.ResidentShrimp: "Shrimp",
	models.ResidentSnail:  "Snails",
	models.ResidentPlant:  "Plants",
	models.ResidentAlgae:  "Algae",
	models.ResidentOther:  "Other",
}

// EventLabels maps event types to display labels.
var EventLabels = map[string]string{
	models.EventWaterChange:    "Water change",
	models.EventFilterClean:    "Filter clean",
	models.EventDose:           "Dose",
	models.EventTreatment:      "Treatment",
	models.EventNote:           "Note",
	models.EventAddResident:    "Added resident",
	models.EventRemoveResident: "Removed resident",
	models.EventSetup:          "Setup",
	models.EventHardscape:      "Hardscape",
	models.EventPlanting:       "Planting",
}

// Empty-state messages.
const (
	EmptyMeasurements = "No measurements logged yet."
	EmptyEvents       = "No events logged yet."
	EmptyPhotos       = "No photos added yet."
)

func esc(s string) string { return format.Escape(s) }

func emptyState(msg string) string {
	return `<p class="empty-state">` + esc(msg) + `</p>`
}

// Tank renders the tank details list. Blank entries are omitted and the
// region stays hidden when nothing is left.
func (r *Renderer) Tank(ctx *Context, t *models.Tank) bool {
	if t == nil {
		return false
	}
	type item struct{ label, value string }
	var items []item
	if t.Name.Truthy && !t.Name.Blank() {
		items = append(items, item{"Name", t.Name.Text})
	}
	if !t.VolumeL.Blank() {
		items = append(items, item{"Volume", r.fmt.Volume(t.VolumeL)})
	}
	if t.Start.Truthy && !t.Start.Blank() {
		items = append(items, item{"Started", r.fmt.Date(t.Start)})
	}
	if t.Notes.Truthy && !t.Notes.Blank() {
		items = append(items, item{"Notes", t.Notes.Text})
	}
	if len(items) == 0 {
		return false
	}

	var b strings.Builder
	b.WriteString(`<ul class="details-grid">`)
	for _, it := range items {
		b.WriteString(`<li><span>` + esc(it.label) + `</span><strong>` + esc(it.value) + `</strong></li>`)
	}
	b.WriteString(`</ul>`)
	ctx.show(SectionTank, b.String())
	return true
}

// ResidentGroup is the residents sharing one type.
type ResidentGroup struct {
	Key     string
	Entries []models.Resident
}

// GroupResidents groups residents by type in first-seen order and sorts each
// group by label, ignoring case.
func (r *Renderer) GroupResidents(residents []models.Resident) []ResidentGroup {
	var groups []ResidentGroup
	index := map[string]int{}
	for _, res := range residents {
		key := res.Group()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ResidentGroup{Key: key})
		}
		groups[i].Entries = append(groups[i].Entries, res)
	}
	// Collators keep scratch buffers, so each call gets its own.
	c := collate.New(r.fmt.Locale, collate.IgnoreCase, collate.IgnoreDiacritics)
	for _, g := range groups {
		slices.SortStableFunc(g.Entries, func(a, b models.Resident) int {
			return c.CompareString(a.Label.Or(""), b.Label.Or(""))
		})
	}
	return groups
}

// Residents renders one table per resident type.
func (r *Renderer) Residents(ctx *Context, residents []models.Resident) bool {
	if len(residents) == 0 {
		return false
	}

	var b strings.Builder
	for _, g := range r.GroupResidents(residents) {
		heading, ok := ResidentLabels[g.Key]
		if !ok {
			heading = g.Key
		}
		b.WriteString(`<section class="resident-group"><h3>` + esc(heading) + `</h3>`)
		b.WriteString(`<div class="table-wrapper"><table><thead><tr>` +
			`<th scope="col">Label</th><th scope="col">Common</th><th scope="col">Scientific</th>` +
			`<th scope="col">Count</th><th scope="col">Since</th></tr></thead><tbody>`)
		for _, e := range g.Entries {
			b.WriteString(`<tr>`)
			cell(&b, e.Label.Or(""))
			cell(&b, e.Common.Or(""))
			cell(&b, e.Sci.Or(""))
			cell(&b, e.Count.Or(""))
			cell(&b, r.fmt.Date(e.Date))
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table></div></section>`)
	}
	ctx.show(SectionResidents, b.String())
	return true
}

// Measurements renders readings in document order, or the empty state.
func (r *Renderer) Measurements(ctx *Context, measurements []models.Measurement) bool {
	if len(measurements) == 0 {
		ctx.show(SectionMeasurements, emptyState(EmptyMeasurements))
		return true
	}

	var b strings.Builder
	b.WriteString(`<div class="table-wrapper"><table><thead><tr>` +
		`<th>Date</th><th>pH</th><th>Temp °C</th><th>GH</th><th>KH</th>` +
		`<th>NO₃</th><th>NO₂</th><th>NH₃</th><th>Notes</th></tr></thead><tbody>`)
	for _, m := range measurements {
		b.WriteString(`<tr>`)
		cell(&b, r.fmt.DateTime(m.T))
		for _, v := range []models.Field{m.PH, m.Temp, m.GH, m.KH, m.NO3, m.NO2, m.NH3} {
			cell(&b, v.Or(format.Placeholder))
		}
		cell(&b, m.Notes.TruthyOr(format.Placeholder))
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></div>`)
	ctx.show(SectionMeasurements, b.String())
	return true
}

// EventLabel returns the display label for an event type.
func EventLabel(t models.Field) string {
	if l, ok := EventLabels[t.Text]; ok && t.Set {
		return l
	}
	return t.Or("Event")
}

// Events renders the event log in document order, or the empty state.
func (r *Renderer) Events(ctx *Context, events []models.Event) bool {
	if len(events) == 0 {
		ctx.show(SectionEvents, emptyState(EmptyEvents))
		return true
	}

	var b strings.Builder
	b.WriteString(`<div class="table-wrapper"><table><thead><tr>` +
		`<th>Date</th><th>Event</th><th>Details</th><th>Notes</th></tr></thead><tbody>`)
	for _, e := range events {
		b.WriteString(`<tr>`)
		cell(&b, r.fmt.DateTime(e.T))
		cell(&b, EventLabel(e.Type))
		if e.V1.Truthy {
			b.WriteString(`<td><span class="tag">` + esc(e.V1.Text) + `</span></td>`)
		} else {
			cell(&b, format.Placeholder)
		}
		cell(&b, e.Notes.TruthyOr(format.Placeholder))
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></div>`)
	ctx.show(SectionEvents, b.String())
	return true
}

func cell(b *strings.Builder, value string) {
	b.WriteString(`<td>` + esc(value) + `</td>`)
}
