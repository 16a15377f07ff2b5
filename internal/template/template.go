// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package template

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/vorlif/humanize"
	"github.com/vorlif/spreak"
	"github.com/vorlif/spreak/localize"

	"github.com/wneessen/city-weather/internal/config"
)

// Templates holds one parsed template per display field.
type Templates struct {
	Temperature *template.Template
	MinMax      *template.Template
	Sun         *template.Template
	FeelsLike   *template.Template
	Icon        *template.Template
	Description *template.Template

	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

func New(conf *config.Config, loc *spreak.Localizer) (*Templates, error) {
	if loc == nil {
		return nil, fmt.Errorf("localizer is required")
	}
	tpls := &Templates{
		localizer: loc,
		humanizer: humanize.MustNew().CreateHumanizer(loc.Language()),
	}

	sources := []struct {
		name   string
		text   string
		target **template.Template
	}{
		{"temperature", conf.Templates.Temperature, &tpls.Temperature},
		{"min_max", conf.Templates.MinMax, &tpls.MinMax},
		{"sun", conf.Templates.Sun, &tpls.Sun},
		{"feels_like", conf.Templates.FeelsLike, &tpls.FeelsLike},
		{"icon", conf.Templates.Icon, &tpls.Icon},
		{"description", conf.Templates.Description, &tpls.Description},
	}
	for _, src := range sources {
		tpl, err := template.New(src.name).Funcs(tpls.templateFuncMap()).Parse(src.text)
		if err != nil {
			return tpls, fmt.Errorf("failed to parse %s template: %w", src.name, err)
		}
		*src.target = tpl
	}

	return tpls, nil
}

func (t *Templates) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":    timeFormat,
		"floatFormat":   floatFormat,
		"localizedTime": t.localizedTime,
		"naturalTime":   t.naturalTime,
		"loc":           t.loc,
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
	}
}

// loc translates a display label. Labels without a translation are returned as-is.
func (t *Templates) loc(val string) string {
	return t.localizer.Get(localize.MsgID(val))
}

func (t *Templates) localizedTime(val time.Time) string {
	return t.humanizer.FormatTime(val, humanize.TimeFormat)
}

// naturalTime describes val relative to now, e.g. "3 minutes ago".
func (t *Templates) naturalTime(val time.Time) string {
	return t.humanizer.NaturalTime(val)
}

func timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}
