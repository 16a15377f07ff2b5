// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/wneessen/city-weather/internal/http"
	"github.com/wneessen/city-weather/internal/logger"
	"github.com/wneessen/city-weather/internal/vartype"
	"github.com/wneessen/city-weather/internal/weather"
)

const (
	name = "openweathermap"

	// DefaultEndpoint is the "current weather data" endpoint of the OpenWeatherMap API
	DefaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	// DefaultTimeout is used when no timeout is configured
	DefaultTimeout = time.Second * 10
	// DefaultRequestsPerMinute matches the limit of the OpenWeatherMap free plan
	DefaultRequestsPerMinute = 60

	units     = "metric"
	codeOK    = 200
	unknownID = -1
)

var ErrMissingAPIKey = errors.New("OpenWeatherMap API key is required")

// Options configures the OpenWeatherMap provider. Zero values fall back to the defaults.
type Options struct {
	APIKey            string
	Endpoint          string
	Lang              language.Tag
	Timeout           time.Duration
	RequestsPerMinute int
}

type OpenWeatherMap struct {
	apiKey   string
	endpoint string
	lang     string
	timeout  time.Duration
	limiter  *rate.Limiter
	log      *logger.Logger
	http     *http.Client
}

// statusCode is the embedded "cod" field. The API sends it as a number on success and
// as a string on most errors.
type statusCode struct {
	vartype.VarInt
}

type response struct {
	Cod     statusCode `json:"cod"`
	Message string     `json:"message"`
	Name    string     `json:"name"`
	Main    struct {
		Temp      vartype.VarFloat64 `json:"temp"`
		TempMin   vartype.VarFloat64 `json:"temp_min"`
		TempMax   vartype.VarFloat64 `json:"temp_max"`
		FeelsLike vartype.VarFloat64 `json:"feels_like"`
	} `json:"main"`
	Wind struct {
		Speed vartype.VarFloat64 `json:"speed"`
		Deg   vartype.VarInt     `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Sunrise vartype.VarInt64 `json:"sunrise"`
		Sunset  vartype.VarInt64 `json:"sunset"`
	} `json:"sys"`
	Weather []struct {
		Icon        vartype.VarString `json:"icon"`
		Description vartype.VarString `json:"description"`
	} `json:"weather"`

	Dt vartype.VarInt64 `json:"dt"`
}

func New(client *http.Client, log *logger.Logger, opts Options) (*OpenWeatherMap, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.Lang == language.Und {
		opts.Lang = language.BrazilianPortuguese
	}

	return &OpenWeatherMap{
		apiKey:   opts.APIKey,
		endpoint: opts.Endpoint,
		lang:     apiLanguage(opts.Lang),
		timeout:  opts.Timeout,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		log:      log,
		http:     client,
	}, nil
}

func (o *OpenWeatherMap) Name() string {
	return name
}

// Current fetches the current weather for the given city. The city name is sent verbatim.
func (o *OpenWeatherMap) Current(ctx context.Context, city string) (*weather.Snapshot, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", weather.ErrTransport, err)
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("units", units)
	query.Set("lang", o.lang)
	query.Set("appid", o.apiKey)

	res := new(response)
	code, err := o.http.GetWithTimeout(ctx, o.endpoint, res, query, nil, o.timeout)
	switch {
	case errors.Is(err, http.ErrUnexpectedStatus):
		return nil, &weather.StatusError{Code: code}
	case err != nil && code == 0:
		return nil, fmt.Errorf("%w: %w", weather.ErrTransport, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", weather.ErrMalformedPayload, err)
	}
	o.log.Debug("received OpenWeatherMap response", slog.Int("status", code),
		slog.String("cod", res.Cod.String()), slog.String("name", res.Name))

	if !res.Cod.IsSet() {
		return nil, &weather.PayloadError{Field: "cod"}
	}
	if res.Cod.Value() != codeOK {
		return nil, &weather.ProviderError{Code: res.Cod.Value(), Message: res.Message}
	}

	return res.snapshot()
}

// snapshot validates the response once and converts it into a weather.Snapshot.
func (r *response) snapshot() (*weather.Snapshot, error) {
	if len(r.Weather) == 0 {
		return nil, &weather.PayloadError{Field: "weather[0]"}
	}
	cond := r.Weather[0]
	required := []struct {
		field string
		isset bool
	}{
		{"main.temp", r.Main.Temp.IsSet()},
		{"main.temp_min", r.Main.TempMin.IsSet()},
		{"main.temp_max", r.Main.TempMax.IsSet()},
		{"main.feels_like", r.Main.FeelsLike.IsSet()},
		{"wind.speed", r.Wind.Speed.IsSet()},
		{"wind.deg", r.Wind.Deg.IsSet()},
		{"sys.sunrise", r.Sys.Sunrise.IsSet()},
		{"sys.sunset", r.Sys.Sunset.IsSet()},
		{"weather[0].icon", cond.Icon.IsSet()},
		{"weather[0].description", cond.Description.IsSet()},
	}
	for _, req := range required {
		if !req.isset {
			return nil, &weather.PayloadError{Field: req.field}
		}
	}

	var observed time.Time
	if r.Dt.IsSet() {
		observed = time.Unix(r.Dt.Value(), 0).UTC()
	}

	return &weather.Snapshot{
		City:           r.Name,
		Temperature:    r.Main.Temp.Value(),
		TemperatureMin: r.Main.TempMin.Value(),
		TemperatureMax: r.Main.TempMax.Value(),
		FeelsLike:      r.Main.FeelsLike.Value(),
		WindSpeed:      r.Wind.Speed.Value(),
		WindDirection:  r.Wind.Deg.Value(),
		Sunrise:        time.Unix(r.Sys.Sunrise.Value(), 0).UTC(),
		Sunset:         time.Unix(r.Sys.Sunset.Value(), 0).UTC(),
		IconCode:       cond.Icon.Value(),
		Description:    cond.Description.Value(),
		Observed:       observed,
	}, nil
}

func (s *statusCode) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("empty status code")
	}
	if b[0] != '"' {
		return s.VarInt.UnmarshalJSON(b)
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("failed to parse status code: %w", err)
	}
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		code = unknownID
	}
	s.Set(code)
	return nil
}

// apiLanguage converts a language tag into the language parameter understood by the API,
// which uses lowercase underscore separated codes like "pt_br" or "zh_cn".
func apiLanguage(tag language.Tag) string {
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.Exact {
		return strings.ToLower(base.String() + "_" + region.String())
	}
	return strings.ToLower(base.String())
}
