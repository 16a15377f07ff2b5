// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

// FallbackGlyph is shown for icon codes that are not part of IconGlyphs.
const FallbackGlyph = "❓"

// IconGlyphs maps OpenWeatherMap icon codes to emoji. The suffix "d" marks the day
// variant, "n" the night variant.
var IconGlyphs = map[string]string{
	"01d": "☀️", // Clear sky
	"01n": "🌙",
	"02d": "⛅", // Few clouds
	"02n": "☁️",
	"03d": "🌥️", // Scattered clouds
	"03n": "☁️",
	"04d": "☁️", // Broken clouds
	"04n": "☁️",
	"09d": "🌧️", // Shower rain
	"09n": "🌧️",
	"10d": "🌦️", // Rain
	"10n": "🌧️",
	"11d": "⛈️", // Thunderstorm
	"11n": "⛈️",
	"13d": "❄️", // Snow
	"13n": "❄️",
	"50d": "🌫️", // Mist
	"50n": "🌫️",
}

// IconGlyph returns the emoji for the given icon code or FallbackGlyph if the code is unknown.
func IconGlyph(code string) string {
	if glyph, ok := IconGlyphs[code]; ok {
		return glyph
	}
	return FallbackGlyph
}
