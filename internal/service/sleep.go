// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/city-weather/internal/logger"
)

const (
	dbusInterface   = "org.freedesktop.login1.Manager"
	dbusWatchMember = "PrepareForSleep"

	resumeDebounce   = 2 * time.Second
	signalBufferSize = 8

	busReconnectDelay   = 5 * time.Second
	subscribeRetryDelay = 10 * time.Second
	networkWakeupDelay  = 10 * time.Second
)

// sleepMonitor refreshes the display after the system resumed from sleep, so that the
// shown weather is not hours old. It follows logind's PrepareForSleep signal on the system bus.
type sleepMonitor struct {
	logger     *logger.Logger
	refresh    func(context.Context) error
	delay      time.Duration
	lastResume atomic.Int64
}

func newSleepMonitor(log *logger.Logger, refresh func(context.Context) error) *sleepMonitor {
	return &sleepMonitor{
		logger:  log.With(slog.String("component", "sleep_monitor")),
		refresh: refresh,
		delay:   networkWakeupDelay,
	}
}

// Run watches for resume events until ctx is cancelled. A missing system bus is retried
// quietly, since not every system runs logind.
func (m *sleepMonitor) Run(ctx context.Context) {
	for {
		conn := m.connect(ctx)
		if conn == nil {
			return
		}
		if err := conn.AddMatchSignal(dbus.WithMatchInterface(dbusInterface),
			dbus.WithMatchMember(dbusWatchMember)); err != nil {
			m.logger.Debug("failed to subscribe to dbus signal", slog.String("member", dbusWatchMember),
				logger.Err(err))
			m.close(conn)
			if !wait(ctx, subscribeRetryDelay) {
				return
			}
			continue
		}

		sigCh := make(chan *dbus.Signal, signalBufferSize)
		conn.Signal(sigCh)
		m.logger.Debug("watching for system resume events")
		m.watch(ctx, sigCh)

		conn.RemoveSignal(sigCh)
		m.close(conn)
		if !wait(ctx, busReconnectDelay) {
			return
		}
	}
}

func (m *sleepMonitor) connect(ctx context.Context) *dbus.Conn {
	for {
		conn, err := dbus.ConnectSystemBus()
		if err == nil {
			return conn
		}
		m.logger.Debug("system bus not available", logger.Err(err))
		if !wait(ctx, busReconnectDelay) {
			return nil
		}
	}
}

func (m *sleepMonitor) close(conn *dbus.Conn) {
	if err := conn.Close(); err != nil {
		m.logger.Debug("failed to close system bus connection", logger.Err(err))
	}
}

// watch handles signals until ctx is cancelled or the channel is closed by a lost connection.
func (m *sleepMonitor) watch(ctx context.Context, sigCh <-chan *dbus.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			if isResume(sig) {
				m.resumed(ctx)
			}
		}
	}
}

// resumed refreshes once the network had time to come back. Resume events within the
// debounce window of the previous one are ignored.
func (m *sleepMonitor) resumed(ctx context.Context) {
	now := time.Now()
	last := m.lastResume.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < resumeDebounce {
		return
	}
	m.lastResume.Store(now.UnixNano())

	if !wait(ctx, m.delay) {
		return
	}
	m.logger.Debug("system resumed from sleep, refreshing weather display")
	if err := m.refresh(ctx); err != nil {
		m.logger.Debug("refresh after resume failed", logger.Err(err))
	}
}

// isResume reports whether sig is a PrepareForSleep(false) signal.
func isResume(sig *dbus.Signal) bool {
	if sig == nil || sig.Name != dbusInterface+"."+dbusWatchMember || len(sig.Body) != 1 {
		return false
	}
	sleeping, ok := sig.Body[0].(bool)
	return ok && !sleeping
}

// wait blocks for d and reports false if ctx was cancelled first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
