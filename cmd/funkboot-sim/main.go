// Command funkboot-sim runs a funkboot device, a simulated radio and a
// programming host in one process.
//
// Usage:
//
//	funkboot-sim -hex firmware.hex [-config target.toml] [-eeprom config.bin]
//	    [-snapshot device.fbs] [-loss 0.1] [-metrics :9100]
//
// Without -hex the device waits for its boot timeout and starts the
// application it already holds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-funkboot/bootloader"
	"github.com/moffa90/go-funkboot/config"
	"github.com/moffa90/go-funkboot/host"
	"github.com/moffa90/go-funkboot/ihex"
	"github.com/moffa90/go-funkboot/internal/logging"
	"github.com/moffa90/go-funkboot/internal/metrics"
	"github.com/moffa90/go-funkboot/memory"
	"github.com/moffa90/go-funkboot/protocol"
	"github.com/moffa90/go-funkboot/radio"
)

type options struct {
	configPath   string
	hexPath      string
	eepromPath   string
	snapshotPath string
	loss         float64
	seed         int64
	hostAddr     uint
	metricsAddr  string
	verbose      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "target profile (.toml, .yaml); default funkstuff168")
	flag.StringVar(&opts.hexPath, "hex", "", "Intel HEX image to program")
	flag.StringVar(&opts.eepromPath, "eeprom", "", "raw EEPROM image to program at address 0")
	flag.StringVar(&opts.snapshotPath, "snapshot", "", "device memory snapshot to load and save")
	flag.Float64Var(&opts.loss, "loss", 0, "packet loss probability (0..1)")
	flag.Int64Var(&opts.seed, "seed", 1, "packet loss random seed")
	flag.UintVar(&opts.hostAddr, "host", 0x01, "host radio address")
	flag.StringVar(&opts.metricsAddr, "metrics", "", "serve Prometheus metrics on this address")
	flag.BoolVar(&opts.verbose, "v", false, "log every request")
	flag.Parse()

	logging.ConfigureRuntime()
	logger := logging.NewLogger("funkboot-sim")
	if opts.verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error().Err(err).Msg("simulation failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger zerolog.Logger) error {
	if opts.loss < 0 || opts.loss >= 1 {
		return fmt.Errorf("loss %v: must be in [0, 1)", opts.loss)
	}
	if opts.hostAddr > 0xFF {
		return fmt.Errorf("host address 0x%X: must fit in one byte", opts.hostAddr)
	}

	target := config.Default()
	if opts.configPath != "" {
		var err error
		if target, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if uint8(opts.hostAddr) == target.Address {
		return fmt.Errorf("host and device share address 0x%02X", target.Address)
	}
	logger.Info().
		Str("target", target.Name).
		Str("address", fmt.Sprintf("0x%02X", target.Address)).
		Str("version", target.Version).
		Msg("loaded target profile")

	if opts.metricsAddr != "" {
		shutdown, err := serveMetrics(opts.metricsAddr, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	// device memories
	flashHW := memory.NewSimFlash(target.FlashSize, target.PageSize)
	eepromHW := memory.NewSimEEPROM(target.EEPROMSize)
	if opts.snapshotPath != "" {
		if err := loadSnapshot(opts.snapshotPath, flashHW, eepromHW); err != nil {
			return err
		}
	}

	// radio
	var airOpts []radio.Option
	if opts.loss > 0 {
		airOpts = append(airOpts, radio.WithLoss(radio.RandomLoss(opts.loss, opts.seed)))
	}
	air := radio.NewAir(airOpts...)
	node := air.Node(target.Address)

	// device
	blOpts := append(target.BootloaderOptions(),
		bootloader.WithLogger(logging.NewAdapter(logger.With().Str("side", "device").Logger())),
	)
	bl := bootloader.New(metrics.InstrumentTransport(node, target.Address),
		memory.NewFlash(flashHW, target.Layout()),
		memory.NewEEPROM(eepromHW, target.EEPROMSize),
		blOpts...,
	)

	devCtx, cancelDevice := context.WithCancel(ctx)
	defer cancelDevice()

	ticker := time.NewTicker(target.Tick)
	defer ticker.Stop()

	done := make(chan error, 1)
	go func() { done <- bl.Run(devCtx, ticker.C) }()

	// host
	var img *ihex.Image
	if opts.hexPath != "" {
		var err error
		if img, err = ihex.Parse(opts.hexPath); err != nil {
			return err
		}
		logger.Info().
			Str("path", opts.hexPath).
			Int("bytes", img.Size()).
			Str("end", fmt.Sprintf("0x%04X", img.End())).
			Msg("loaded image")

		if err := program(ctx, opts, target, img, air.Endpoint(uint8(opts.hostAddr)), logger, done); err != nil {
			return err
		}
	}

	if err := <-done; err != nil {
		return fmt.Errorf("bootloader: %w", err)
	}

	sent, received, overruns := node.Stats()
	logger.Info().
		Int("sent", sent).
		Int("received", received).
		Int("overruns", overruns).
		Msg("bootloader left, jumping to application")

	if img != nil {
		flash := flashHW.Bytes()
		digest := ihex.Sum(flash[:img.End()])
		logger.Info().
			Hex("digest", digest[:]).
			Bool("match", digest == img.Digest()).
			Msg("application flash")
	}

	if opts.snapshotPath != "" {
		if err := saveSnapshot(opts.snapshotPath, flashHW, eepromHW); err != nil {
			return err
		}
		logger.Info().Str("path", opts.snapshotPath).Msg("snapshot saved")
	}
	return nil
}

// program writes the image and the EEPROM file, checks the flash digest
// over the radio and starts the application.
func program(ctx context.Context, opts options, target config.Target, img *ihex.Image, link host.Link, logger zerolog.Logger, done chan error) (err error) {
	start := time.Now()
	client := host.New(link, target.Address,
		host.WithLogger(logging.NewAdapter(logger.With().Str("side", "host").Logger())),
		host.WithTimeout(20*target.Tick+50*time.Millisecond),
		host.WithRetries(10),
		host.WithExpectedSignature(target.Signature),
		host.WithProgressCallback(progressPrinter(os.Stdout, 40)),
		host.WithStartApplication(false),
	)
	defer func() {
		metrics.RecordProgram(target.Name, time.Since(start), client.Retransmissions(), err == nil)
	}()

	version, err := client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	logger.Info().Str("version", version.String()).Msg("device answered")

	if err := client.Program(ctx, img); err != nil {
		return err
	}

	if opts.eepromPath != "" {
		data, err := os.ReadFile(opts.eepromPath)
		if err != nil {
			return fmt.Errorf("read eeprom image: %w", err)
		}
		if err := client.ProgramEEPROM(ctx, 0, data); err != nil {
			return err
		}
		logger.Info().Int("bytes", len(data)).Msg("eeprom programmed")
	}

	flash, err := client.Dump(ctx, protocol.MemoryFlash, 0, int(img.End()))
	if err != nil {
		return fmt.Errorf("read back flash: %w", err)
	}
	if ihex.Sum(flash) != img.Digest() {
		return errors.New("flash digest does not match the image")
	}

	err = client.SwitchMode(ctx, protocol.ModeApplication)
	var timeout *host.TimeoutError
	if errors.As(err, &timeout) {
		// the device leaves as soon as the confirmation is on air
		select {
		case devErr := <-done:
			done <- devErr
			logger.Info().Msg("switch confirmation lost, device already left")
			return nil
		default:
		}
	}
	return err
}

func loadSnapshot(path string, flash *memory.SimFlash, eeprom *memory.SimEEPROM) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	return memory.LoadSnapshot(f, flash, eeprom)
}

func saveSnapshot(path string, flash *memory.SimFlash, eeprom *memory.SimEEPROM) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := memory.SaveSnapshot(f, flash, eeprom); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
