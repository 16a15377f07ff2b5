// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"context"
	"time"
)

// kmhPerMS converts meters per second to kilometers per hour.
const kmhPerMS = 3.6

// Provider is implemented by each weather API backend.
type Provider interface {
	Name() string
	Current(ctx context.Context, city string) (*Snapshot, error)
}

// Snapshot holds the current conditions of one successful provider response. Temperatures
// are in degrees Celsius, wind speed in meters per second. Observed is the zero time if the
// provider did not report when the conditions were measured.
type Snapshot struct {
	City           string
	Temperature    float64
	TemperatureMin float64
	TemperatureMax float64
	FeelsLike      float64
	WindSpeed      float64
	WindDirection  int
	Sunrise        time.Time
	Sunset         time.Time
	IconCode       string
	Description    string
	Observed       time.Time
}

// WindSpeedKMH returns the wind speed in kilometers per hour.
func (s Snapshot) WindSpeedKMH() float64 {
	return s.WindSpeed * kmhPerMS
}

// Icon returns the display glyph for the snapshot's icon code.
func (s Snapshot) Icon() string {
	return IconGlyph(s.IconCode)
}
