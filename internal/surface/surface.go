// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package surface implements the presentation surface of the weather display: a city
// input, a fetch action and six read-only weather fields drawn as a centered block.
package surface

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/spreak"
)

var (
	// ErrFetchInProgress is returned by TriggerFetch while a previous fetch is still running.
	ErrFetchInProgress = errors.New("a weather fetch is already in progress")
	// ErrNoFetchHandler is returned by TriggerFetch if no handler has been registered.
	ErrNoFetchHandler = errors.New("no fetch handler registered")
)

// Fields holds the formatted strings of the six weather fields.
type Fields struct {
	Temperature string
	MinMax      string
	Sun         string
	FeelsLike   string
	Icon        string
	Description string
}

// FetchFunc is invoked with the current city input when the fetch action is triggered.
type FetchFunc func(ctx context.Context, city string) error

type Surface struct {
	localizer *spreak.Localizer
	width     int
	fetching  atomic.Bool

	mu      sync.RWMutex
	city    string
	fields  Fields
	onFetch FetchFunc
}

// New returns a Surface with the city input pre-populated and all weather fields empty.
func New(city string, width int, loc *spreak.Localizer) (*Surface, error) {
	if loc == nil {
		return nil, fmt.Errorf("localizer is required")
	}
	if width <= 0 {
		return nil, fmt.Errorf("invalid surface width: %d", width)
	}
	return &Surface{
		localizer: loc,
		width:     width,
		city:      city,
	}, nil
}

// SetCityInput replaces the city input. Any string, including the empty one, is accepted.
func (s *Surface) SetCityInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.city = text
}

// CityInput returns the current city input.
func (s *Surface) CityInput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.city
}

// OnFetch registers the handler of the fetch action, replacing any previous one.
func (s *Surface) OnFetch(fn FetchFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFetch = fn
}

// TriggerFetch invokes the fetch handler with the current city input and blocks until
// it returns. A trigger while another fetch is running fails with ErrFetchInProgress.
func (s *Surface) TriggerFetch(ctx context.Context) error {
	s.mu.RLock()
	handler, city := s.onFetch, s.city
	s.mu.RUnlock()
	if handler == nil {
		return ErrNoFetchHandler
	}

	if !s.fetching.CompareAndSwap(false, true) {
		return ErrFetchInProgress
	}
	defer s.fetching.Store(false)

	return handler(ctx, city)
}

// ClearWeatherFields resets all six weather fields to empty strings.
func (s *Surface) ClearWeatherFields() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = Fields{}
}

// RenderSnapshot writes all six weather fields at once.
func (s *Surface) RenderSnapshot(fields Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = fields
}

// ShowError writes msg into the temperature field, leaving the other fields untouched.
func (s *Surface) ShowError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields.Temperature = msg
}

// Fields returns a copy of the current weather fields.
func (s *Surface) Fields() Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields
}

// Draw writes the surface to w as a vertical block of center-aligned lines.
func (s *Surface) Draw(w io.Writer) error {
	s.mu.RLock()
	city, fields := s.city, s.fields
	s.mu.RUnlock()

	rule := strings.Repeat("─", s.width)
	lines := []string{
		rule,
		s.localizer.Get("Which city?"),
		"[ " + city + " ]",
		"< " + s.localizer.Get("Get weather") + " >",
		"",
		fields.Temperature,
		fields.MinMax,
		fields.Sun,
		fields.FeelsLike,
		fields.Icon,
		fields.Description,
		rule,
	}

	buf := bufio.NewWriter(w)
	for _, block := range lines {
		for _, line := range strings.Split(block, "\n") {
			if _, err := buf.WriteString(s.center(line) + "\n"); err != nil {
				return fmt.Errorf("failed to draw surface: %w", err)
			}
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to draw surface: %w", err)
	}
	return nil
}

// center pads line on the left so that it is centered within the surface width. Lines
// wider than the surface are returned unchanged.
func (s *Surface) center(line string) string {
	width := runewidth.StringWidth(line)
	if width == 0 || width >= s.width {
		return line
	}
	return strings.Repeat(" ", (s.width-width)/2) + line
}
