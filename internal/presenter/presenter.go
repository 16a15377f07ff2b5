// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/wneessen/go-moonphase"

	"github.com/wneessen/city-weather/internal/surface"
	tpl "github.com/wneessen/city-weather/internal/template"
	"github.com/wneessen/city-weather/internal/weather"
)

// Context wraps a weather.Snapshot with presentation-related fields. It is the data
// the display field templates are executed against.
type Context struct {
	weather.Snapshot

	SunriseTime   time.Time
	SunsetTime    time.Time
	UpdateTime    time.Time
	MoonPhase     string
	MoonPhaseIcon string
}

// MoonPhaseIcon maps moon phase names to their emoji representation.
var MoonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

type Presenter struct {
	templates *tpl.Templates
	location  *time.Location
	now       func() time.Time
}

// New returns a Presenter that renders sunrise and sunset in the given location.
func New(templates *tpl.Templates, location *time.Location) (*Presenter, error) {
	if templates == nil {
		return nil, fmt.Errorf("templates are required")
	}
	if location == nil {
		location = time.Local
	}
	return &Presenter{templates: templates, location: location, now: time.Now}, nil
}

// BuildContext converts the snapshot into the template context. The update time and moon
// phase refer to the observation time, or to the current time if the provider omitted it.
func (p *Presenter) BuildContext(snap *weather.Snapshot) Context {
	updated := snap.Observed
	if updated.IsZero() {
		updated = p.now()
	}
	phase := moonphase.New(updated).PhaseName()

	return Context{
		Snapshot:      *snap,
		SunriseTime:   snap.Sunrise.In(p.location),
		SunsetTime:    snap.Sunset.In(p.location),
		UpdateTime:    updated.In(p.location),
		MoonPhase:     phase,
		MoonPhaseIcon: MoonPhaseIcon[phase],
	}
}

// Render formats the snapshot into the six display fields. Either all fields are
// rendered or an error is returned.
func (p *Presenter) Render(snap *weather.Snapshot) (surface.Fields, error) {
	var fields surface.Fields
	if snap == nil {
		return fields, fmt.Errorf("no weather snapshot to render")
	}
	ctx := p.BuildContext(snap)

	targets := []struct {
		tpl    *template.Template
		target *string
	}{
		{p.templates.Temperature, &fields.Temperature},
		{p.templates.MinMax, &fields.MinMax},
		{p.templates.Sun, &fields.Sun},
		{p.templates.FeelsLike, &fields.FeelsLike},
		{p.templates.Icon, &fields.Icon},
		{p.templates.Description, &fields.Description},
	}
	buf := bytes.NewBuffer(nil)
	for _, t := range targets {
		buf.Reset()
		if err := t.tpl.Execute(buf, ctx); err != nil {
			return surface.Fields{}, fmt.Errorf("failed to render %s template: %w", t.tpl.Name(), err)
		}
		*t.target = buf.String()
	}

	return fields, nil
}
