// Command forcepad reads two force sensors, classifies press gestures and
// sends the bound media keys to a wireless keyboard bridge over MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/forcepad/internal/action"
	"github.com/sweeney/forcepad/internal/config"
	"github.com/sweeney/forcepad/internal/keyboard"
	"github.com/sweeney/forcepad/internal/led"
	"github.com/sweeney/forcepad/internal/logic"
	"github.com/sweeney/forcepad/internal/sensor"
	"github.com/sweeney/forcepad/internal/status"
	"github.com/sweeney/forcepad/internal/web"
)

func main() {
	def := config.Default()
	configPath := flag.String("config", "", "YAML config file (optional)")
	serialDev := flag.String("serial", def.Serial.Device, "Serial device of the ADC bridge")
	broker := flag.String("broker", def.MQTT.Broker, "MQTT broker address")
	httpAddr := flag.String("http", def.HTTP.Addr, "HTTP status address (empty to disable)")
	poll := flag.Duration("poll", def.Poll(), "Sensor polling interval")
	heartbeat := flag.Duration("heartbeat", def.Heartbeat(), "Heartbeat interval (0 to disable)")
	logLevel := flag.String("log-level", def.Log.Level, "Log level (error, warn, info, debug)")
	printSample := flag.Bool("print-sample", false, "Print one raw sample and exit")

	flag.Parse()

	// Only flags the user actually set override the file.
	var ov config.FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "serial":
			ov.SerialDevice = serialDev
		case "broker":
			ov.Broker = broker
		case "http":
			ov.HTTPAddr = httpAddr
		case "poll":
			ov.Poll = poll
		case "heartbeat":
			ov.Heartbeat = heartbeat
		case "log-level":
			ov.LogLevel = logLevel
		}
	})

	cfg, err := loadConfig(*configPath, ov)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	logger, err := setupLogger(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *printSample, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string, ov config.FlagOverrides) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	ov.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setupLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return config.NewLogger(w, level), nil
}

func run(cfg config.Config, printSample bool, logger *slog.Logger) error {
	reader, err := sensor.OpenSerial(cfg.Serial.Device, cfg.Serial.Baud)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer reader.Close()

	if printSample {
		l, r, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Printf("L: %d, R: %d\n", l, r)
		return nil
	}

	kb, err := keyboard.NewMQTTKeyboard(cfg.MQTT.Broker, cfg.MQTT.ClientID, logger)
	if err != nil {
		return fmt.Errorf("init keyboard: %w", err)
	}
	defer kb.Close()

	var ind led.Indicator
	if cfg.LED.Line >= 0 {
		gi, err := led.NewGPIOIndicator(cfg.LED.Chip, cfg.LED.Line)
		if err != nil {
			// The LED is cosmetic; run without it.
			logger.Warn("ready LED unavailable", "error", err)
		} else {
			ind = gi
			defer gi.Close()
		}
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		PollMs:       int64(cfg.PollMs),
		HeartbeatMs:  int64(cfg.HeartbeatMs),
		Broker:       cfg.MQTT.Broker,
		HTTPAddr:     cfg.HTTP.Addr,
		SerialDevice: cfg.Serial.Device,
		LEDLine:      cfg.LED.Line,
	})
	tracker.SetKeyboardConnected(kb.IsConnected())

	snap := tracker.Snapshot()
	startup := keyboard.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := kb.PublishSystem(startup); err != nil {
		logger.Warn("failed to publish startup event", "error", err)
	} else {
		logger.Info("published startup event")
	}

	var broadcast func()
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, logger)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go srv.Run(ctx)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		broadcast = srv.Broadcast
		logger.Info("http status server listening", "addr", cfg.HTTP.Addr)
	}

	logger.Info("started",
		"serial", cfg.Serial.Device,
		"poll", cfg.Poll(),
		"broker", cfg.MQTT.Broker,
		"heartbeat", cfg.Heartbeat(),
	)

	ticker := time.NewTicker(cfg.Poll())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	deps := loopDeps{
		reader:    reader,
		kb:        kb,
		indicator: ind,
		tracker:   tracker,
		broadcast: broadcast,
		heartbeat: cfg.Heartbeat(),
		logger:    logger,
	}
	return runLoop(deps, time.Now, ticker.C, sigCh)
}

// loopDeps are the collaborators of runLoop. indicator, tracker and
// broadcast may be nil.
type loopDeps struct {
	reader    sensor.Reader
	kb        keyboard.Keyboard
	indicator led.Indicator
	tracker   *status.Tracker
	broadcast func()
	heartbeat time.Duration
	logger    *slog.Logger
}

func runLoop(d loopDeps, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	classifier := logic.NewClassifier(logic.DefaultConfig(), startTime)
	dispatcher := action.NewDispatcher(d.kb, logic.AssistantHold, d.logger)

	var latch *led.Latch
	if d.indicator != nil {
		latch = led.NewLatch(d.indicator)
	}

	var prevLeft, prevRight, prevReady bool

	for {
		select {
		case s := <-sig:
			d.logger.Info("shutting down", "signal", s)
			dispatcher.Flush()
			if latch != nil {
				if err := latch.Set(false); err != nil {
					d.logger.Warn("led write failed", "error", err)
				}
			}

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := keyboard.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				d.tracker.SetKeyboardConnected(d.kb.IsConnected())
				event.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := d.kb.PublishSystem(event); err != nil {
				d.logger.Warn("failed to publish shutdown event", "error", err)
			} else {
				d.logger.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			left, right, err := d.reader.Read()
			if err != nil {
				d.logger.Warn("sensor read error", "error", err)
				continue
			}

			// Release a due assistant hold before any new summon this cycle.
			dispatcher.Tick(t)

			events := classifier.Process(logic.Input{Left: left, Right: right, Time: t})
			for _, ev := range events {
				d.logger.Debug("gesture", "side", ev.Side, "kind", ev.Kind)
				sent := dispatcher.Dispatch(ev)
				if d.tracker != nil {
					cmd, _ := action.CommandFor(ev)
					d.tracker.Record(status.GestureRecord{
						Timestamp: ev.Timestamp,
						Side:      ev.Side,
						Kind:      ev.Kind,
						Command:   cmd,
						Sent:      sent,
					})
				}
			}

			connected := d.kb.IsConnected()
			ready := led.Ready(classifier.IsCalibrated(), connected)
			if latch != nil {
				if err := latch.Set(ready); err != nil {
					d.logger.Warn("led write failed", "error", err)
				}
			}
			if ready != prevReady {
				d.logger.Info("ready changed", "ready", ready, "calibrated", classifier.IsCalibrated(), "keyboard", connected)
				prevReady = ready
			}

			lv, rv := classifier.Channels()
			if d.tracker != nil {
				d.tracker.Update(lv, rv, classifier.IsCalibrated(), classifier.Counts())
				d.tracker.SetKeyboardConnected(connected)
			}

			if hb := classifier.CheckHeartbeat(t, d.heartbeat); hb != nil {
				d.logger.Info("heartbeat",
					"uptime", hb.Uptime,
					"short", hb.Counts.ShortPress,
					"long", hb.Counts.LongPress,
					"double", hb.Counts.DoublePress,
					"both", hb.Counts.SimultaneousLongPress,
				)
				hbEvent := keyboard.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					hbEvent.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := d.kb.PublishSystem(hbEvent); err != nil {
					d.logger.Warn("heartbeat publish error", "error", err)
				}
			}

			// Push to websocket clients only when something visible changed.
			if d.broadcast != nil && (len(events) > 0 || lv.Pressed != prevLeft || rv.Pressed != prevRight) {
				d.broadcast()
			}
			prevLeft, prevRight = lv.Pressed, rv.Pressed
		}
	}
}
