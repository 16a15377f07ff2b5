// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vorlif/spreak"

	"github.com/wneessen/city-weather/internal/config"
	"github.com/wneessen/city-weather/internal/http"
	"github.com/wneessen/city-weather/internal/job"
	"github.com/wneessen/city-weather/internal/logger"
	"github.com/wneessen/city-weather/internal/presenter"
	"github.com/wneessen/city-weather/internal/surface"
	"github.com/wneessen/city-weather/internal/template"
	"github.com/wneessen/city-weather/internal/weather"
	"github.com/wneessen/city-weather/internal/weather/provider/openweathermap"
)

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	t         *spreak.Localizer
	provider  weather.Provider
	presenter *presenter.Presenter
	surface   *surface.Surface
	output    io.Writer
	drawLock  sync.Mutex

	SignalSrc signalSource
}

func New(conf *config.Config, log *logger.Logger, t *spreak.Localizer) (*Service, error) {
	if conf == nil {
		return nil, fmt.Errorf("config is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if t == nil {
		return nil, fmt.Errorf("localizer is required")
	}

	tpls, err := template.New(conf, t)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	location, err := conf.Location()
	if err != nil {
		return nil, err
	}
	pres, err := presenter.New(tpls, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}
	surf, err := surface.New(conf.City, conf.Display.Width, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation surface: %w", err)
	}
	provider, err := openweathermap.New(http.New(log), log, openweathermap.Options{
		APIKey:            conf.Provider.APIKey,
		Endpoint:          conf.Provider.Endpoint,
		Lang:              conf.ProviderLang(),
		Timeout:           conf.Provider.Timeout,
		RequestsPerMinute: conf.Provider.RequestsPerMinute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenWeatherMap weather provider: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		t:         t,
		provider:  provider,
		presenter: pres,
		surface:   surf,
		output:    os.Stdout,
		SignalSrc: stdLibSignalSource{},
	}
	surf.OnFetch(service.FetchAndDisplay)

	return service, nil
}

// Run draws the surface and reads city names line by line from in. A non-empty line
// replaces the city input, every line triggers a fetch. Run returns when in is exhausted
// or the context is cancelled. Failed fetches do not end the loop.
func (s *Service) Run(ctx context.Context, in io.Reader) error {
	lines, readErr := s.readLines(ctx, in)

	s.draw()
	if err := s.prompt(); err != nil {
		return err
	}
	if interval := s.config.Display.RefreshInterval; interval > 0 {
		stop, err := s.startAutoRefresh(ctx, interval)
		if err != nil {
			return err
		}
		defer stop()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read city input: %w", err)
				}
				return nil
			}
			if line != "" {
				s.surface.SetCityInput(line)
			}
			_ = s.refresh(ctx)
		}
	}
}

// startAutoRefresh schedules the fetch action at the given interval and refreshes after
// the system resumed from sleep. The returned function stops both and waits for a running
// refresh to finish.
func (s *Service) startAutoRefresh(ctx context.Context, interval time.Duration) (func(), error) {
	scheduler, err := job.New(s.logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	if err = scheduler.Every(ctx, "auto_refresh_job", interval, s.refresh); err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, err
	}
	scheduler.Start()
	go newSleepMonitor(s.logger, s.refresh).Run(ctx)

	return func() {
		cancel()
		if err := scheduler.Shutdown(); err != nil {
			s.logger.Error("failed to shut down scheduler", logger.Err(err))
		}
	}, nil
}

// FetchAndDisplay looks up the current weather for city and pushes the formatted fields
// into the surface. On any error the weather fields are left as they were.
func (s *Service) FetchAndDisplay(ctx context.Context, city string) error {
	log := s.logger.With(slog.String("request_id", uuid.NewString()), slog.String("city", city),
		slog.String("provider", s.provider.Name()))
	log.Debug("fetching current weather")

	snap, err := s.provider.Current(ctx, city)
	if err != nil {
		s.reportFetchError(log, err)
		return err
	}

	fields, err := s.presenter.Render(snap)
	if err != nil {
		log.Error("failed to render weather", logger.Err(err))
		return err
	}

	s.surface.ClearWeatherFields()
	s.surface.RenderSnapshot(fields)
	log.Info("weather display updated", slog.String("location", snap.City))
	return nil
}

// refresh fires the fetch action and redraws the surface, regardless of the outcome.
// A refresh while another fetch is running is dropped.
func (s *Service) refresh(ctx context.Context) error {
	err := s.surface.TriggerFetch(ctx)
	if errors.Is(err, surface.ErrFetchInProgress) {
		s.logger.Warn("ignoring fetch request, another fetch is still running")
		return err
	}
	s.draw()
	return err
}

func (s *Service) draw() {
	s.drawLock.Lock()
	defer s.drawLock.Unlock()
	if err := s.surface.Draw(s.output); err != nil {
		s.logger.Error("failed to draw weather display", logger.Err(err))
	}
}

func (s *Service) prompt() error {
	s.drawLock.Lock()
	defer s.drawLock.Unlock()
	_, err := fmt.Fprintln(s.output, s.t.Get("Press enter to get the weather, type a city name to change it"))
	if err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	return nil
}

// reportFetchError logs err with a level matching its kind. HTTP status codes are written
// to the temperature field only if display.show_errors is enabled.
func (s *Service) reportFetchError(log *logger.Logger, err error) {
	var statusErr *weather.StatusError
	var providerErr *weather.ProviderError
	var payloadErr *weather.PayloadError

	switch {
	case errors.As(err, &statusErr):
		log.Error("weather provider returned HTTP error", slog.Int("status", statusErr.Code))
		if s.config.Display.ShowErrors {
			s.surface.ShowError(strconv.Itoa(statusErr.Code))
		}
	case errors.As(err, &providerErr):
		log.Debug("weather provider returned non-success status", slog.Int("cod", providerErr.Code),
			slog.String("message", providerErr.Message))
	case errors.As(err, &payloadErr):
		log.Warn("weather provider response is missing a field", slog.String("field", payloadErr.Field))
	case errors.Is(err, weather.ErrMalformedPayload):
		log.Warn("weather provider response could not be decoded", logger.Err(err))
	default:
		log.Debug("weather request failed", logger.Err(err))
	}
}

// readLines scans in on its own goroutine, so that a blocking read does not delay the
// reaction to a cancelled context. The error channel receives exactly one value before
// the line channel is closed, unless the context was cancelled.
func (s *Service) readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case lines <- scanner.Text():
			}
		}
		errs <- scanner.Err()
		close(lines)
	}()
	return lines, errs
}
