package engine

import (
	"fmt"

	"github.com/chazu/zoner/pkg/geom"
	"github.com/chazu/zoner/pkg/zone"
)

// Document is what a zone script produces: zone definitions in source
// order, the section planes to apply when averaging them and warnings about
// suspicious definitions.
type Document struct {
	Zones    []zone.Params
	Sections []geom.SectionPlane
	Warnings []EvalWarning

	byID map[string]int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{byID: make(map[string]int)}
}

// Lookup returns the zone defined with id.
func (d *Document) Lookup(id string) (zone.Params, bool) {
	i, ok := d.byID[id]
	if !ok {
		return zone.Params{}, false
	}
	return d.Zones[i], true
}

// ZoneCount returns the number of zone definitions.
func (d *Document) ZoneCount() int { return len(d.Zones) }

func (d *Document) addZone(p zone.Params) error {
	if p.ID == "" {
		return fmt.Errorf("zone id must not be empty")
	}
	if _, dup := d.byID[p.ID]; dup {
		return fmt.Errorf("duplicate zone id %q", p.ID)
	}
	d.byID[p.ID] = len(d.Zones)
	d.Zones = append(d.Zones, p)
	return nil
}

func (d *Document) addSection(p geom.SectionPlane) {
	d.Sections = append(d.Sections, p)
}

func (d *Document) warn(id, format string, args ...any) {
	d.Warnings = append(d.Warnings, EvalWarning{ZoneID: id, Message: fmt.Sprintf(format, args...)})
}
