package main

import (
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-spiled/internal/config"
	"github.com/coreman2200/funtimes-spiled/internal/led"
	"github.com/coreman2200/funtimes-spiled/internal/panel"
	"github.com/coreman2200/funtimes-spiled/internal/rgb"
	"github.com/coreman2200/funtimes-spiled/internal/ws"
)

func main() {
	// ---- Flags (config.yaml overrides them where set) ----
	def := config.Default()
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", def.Driver, "driver: spi | nrzled | console")
		leds       = flag.Int("leds", def.NumLEDs, "number of LEDs on the strip")
		colorOrder = flag.String("order", def.ColorOrder, "wire color order (e.g. GRB, RGB)")
		dev        = flag.String("dev", def.SPI.Dev, "SPI port, e.g. /dev/spidev0.0 (empty: first found)")
		nativeHz   = flag.Int("native-hz", def.SPI.NativeHz, "strip bit rate; SPI runs at 3x")
		speedHz    = flag.Int("speed-hz", def.SPI.SpeedHz, "explicit SPI clock, overrides native-hz*3")
		addr       = flag.String("addr", def.Addr, "HTTP listen address")
		logLevel   = flag.String("log-level", def.LogLevel, "debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// ---- Effective params ----
	eff := config.Config{
		Driver:     *driver,
		NumLEDs:    *leds,
		ColorOrder: *colorOrder,
		Addr:       *addr,
		LogLevel:   *logLevel,
		SPI:        config.SPI{Dev: *dev, NativeHz: *nativeHz, SpeedHz: *speedHz},
	}
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		merge(&eff, c)
	}

	if lvl, err := zerolog.ParseLevel(eff.LogLevel); err != nil {
		log.Warn().Err(err).Str("level", eff.LogLevel).Msg("bad log level; using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(lvl)
	}

	order, err := rgb.ParseOrder(eff.ColorOrder)
	if err != nil {
		log.Fatal().Err(err).Msg("color order")
	}
	if eff.NumLEDs <= 0 {
		log.Fatal().Int("leds", eff.NumLEDs).Msg("invalid LED count")
	}

	strip, closer, selected := openStrip(eff, order)
	if err := strip.ClearAll(); err != nil {
		log.Error().Err(err).Msg("initial clear failed")
	}

	// ---- HTTP ----
	srv := &http.Server{
		Addr:         eff.Addr,
		Handler:      ws.NewServer(strip, selected, log.Logger).Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().
			Str("addr", eff.Addr).
			Str("driver", selected).
			Int("leds", eff.NumLEDs).
			Stringer("order", order).
			Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	_ = srv.Close()
	if err := strip.ClearAll(); err != nil {
		log.Error().Err(err).Msg("final clear failed")
	}
	if err := closer.Close(); err != nil {
		log.Warn().Err(err).Msg("close driver")
	}
}

// openStrip builds the selected output, falling back to the console when no
// SPI port can be opened.
func openStrip(c config.Config, order rgb.Order) (ws.Strip, io.Closer, string) {
	opts := led.SPIOpts{
		Dev:    c.SPI.Dev,
		Native: physic.Frequency(c.SPI.NativeHz) * physic.Hertz,
		Speed:  physic.Frequency(c.SPI.SpeedHz) * physic.Hertz,
	}
	pl := log.With().Str("component", "panel").Logger()

	switch c.Driver {
	case "spi":
		s, err := led.OpenSPI(opts, c.NumLEDs*panel.BytesPerLED, log.Logger)
		if err == nil {
			return panel.New(s, c.NumLEDs, panel.WithOrder(order), panel.WithLogger(pl)), s, "spi"
		}
		log.Warn().Err(err).
			Str("driver", "spi").
			Str("dev", c.SPI.Dev).
			Stringer("speed", opts.BusSpeed()).
			Msg("SPI init failed; falling back to console")

	case "nrzled":
		p, err := led.OpenPort(opts)
		if err == nil {
			var n *led.NRZ
			if n, err = led.NewNRZ(p, c.NumLEDs); err == nil {
				return n, n, "nrzled"
			}
			_ = p.Close()
		}
		log.Warn().Err(err).Str("driver", "nrzled").Msg("nrzled init failed; falling back to console")

	case "console":

	default:
		log.Warn().Str("driver", c.Driver).Msg("unknown driver; using console")
	}

	con := led.NewConsole(c.NumLEDs, order)
	return panel.New(con, c.NumLEDs, panel.WithOrder(order), panel.WithLogger(pl)), con, "console"
}

// merge copies every field set in f over e.
func merge(e, f *config.Config) {
	if f.Driver != "" {
		e.Driver = f.Driver
	}
	if f.NumLEDs > 0 {
		e.NumLEDs = f.NumLEDs
	}
	if f.ColorOrder != "" {
		e.ColorOrder = f.ColorOrder
	}
	if f.Addr != "" {
		e.Addr = f.Addr
	}
	if f.LogLevel != "" {
		e.LogLevel = f.LogLevel
	}
	if f.SPI.Dev != "" {
		e.SPI.Dev = f.SPI.Dev
	}
	if f.SPI.NativeHz > 0 {
		e.SPI.NativeHz = f.SPI.NativeHz
	}
	if f.SPI.SpeedHz > 0 {
		e.SPI.SpeedHz = f.SPI.SpeedHz
	}
}
