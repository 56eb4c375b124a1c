// Command simcir runs a circuit definition headless.
//
//	simcir [flags] circuit.json
//
// The circuit runs for the configured duration, then the value of each probe
// is printed. With --dump, the definition of the running circuit is written to
// stdout, as JSON or YAML.
//
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/db47h/simcir"
	"github.com/db47h/simcir/devices"
	"github.com/db47h/simcir/internal/config"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

type flags struct {
	config      string
	format      string
	run         time.Duration
	dump        bool
	probes      []string
	metricsAddr string
	logLevel    string
}

func parseFlags(args []string) (*flags, []string, error) {
	var f flags
	fs := flag.NewFlagSet("simcir", flag.ContinueOnError)
	fs.StringVarP(&f.config, "config", "c", "", "configuration file")
	fs.StringVar(&f.format, "format", "json", "dump format: json or yaml")
	fs.DurationVarP(&f.run, "run", "r", 0, "run duration, overrides run.duration")
	fs.BoolVar(&f.dump, "dump", false, "write the circuit definition to stdout after the run")
	fs.StringArrayVarP(&f.probes, "probe", "p", nil, "node `path` to print after the run (repeatable)")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: simcir [flags] circuit.{json,yaml}\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if f.format != "json" && f.format != "yaml" {
		return nil, nil, errors.Errorf("invalid dump format %q", f.format)
	}
	return &f, fs.Args(), nil
}

// apply overrides configuration values with the flags that were set.
//
func (f *flags) apply(cfg *config.Config) error {
	if f.run > 0 {
		cfg.Run.Duration = f.run
	}
	if len(f.probes) > 0 {
		cfg.Run.Probes = f.probes
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = f.metricsAddr
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	return cfg.Validate()
}

func newLogger(cfg config.Log) (logr.Logger, func(), error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.ZapLevel())
	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), func() {}, errors.Wrap(err, "build logger")
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

func loadDefinition(name string) (*simcir.Definition, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return simcir.ParseDefinitionYAML(data)
	default:
		return simcir.ParseDefinition(data)
	}
}

// formatValue prints a signal as 0 or 1, and buses as their lines, most
// significant line first.
//
func formatValue(v simcir.Value) string {
	if b, ok := v.(simcir.Bus); ok {
		var sb strings.Builder
		for i := len(b) - 1; i >= 0; i-- {
			sb.WriteString(formatValue(b[i]))
		}
		return "[" + sb.String() + "]"
	}
	return fmt.Sprint(simcir.Bit(v))
}

func serveMetrics(addr string, g prometheus.Gatherer, log logr.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server")
		}
	}()
	return srv
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	f, files, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return errors.New("expected exactly one circuit file")
	}
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if err = f.apply(cfg); err != nil {
		return err
	}

	log, sync, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer sync()

	def, err := loadDefinition(files[0])
	if err != nil {
		return errors.Wrapf(err, "load %s", files[0])
	}
	reg, err := devices.NewRegistry()
	if err != nil {
		return err
	}
	opts := append(cfg.Engine.Options(), simcir.WithRegistry(reg), simcir.WithLogger(log))
	if cfg.Metrics.Enabled {
		pr := prometheus.NewRegistry()
		opts = append(opts, simcir.WithMetrics(simcir.NewMetrics(pr)))
		srv := serveMetrics(cfg.Metrics.Addr, pr, log)
		defer srv.Close()
	}

	c, err := simcir.Build(def, opts...)
	if c == nil {
		return err
	}
	defer c.Close()
	if err != nil {
		// loops are reported but the circuit is usable
		log.Error(err, "build", "circuit", files[0])
	}
	log.Info("circuit running", "circuit", files[0], "devices", len(c.Devices()), "duration", cfg.Run.Duration)

	if cfg.Run.Duration > 0 {
		t := time.NewTimer(cfg.Run.Duration)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}

	for _, p := range cfg.Run.Probes {
		v, err := c.Value(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\n", p, formatValue(v))
	}

	if f.dump {
		if f.format == "yaml" {
			b, err := c.ToDefinition().YAML()
			if err != nil {
				return err
			}
			_, err = stdout.Write(b)
			return errors.WithStack(err)
		}
		return c.WriteJSON(stdout)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "simcir: %v\n", err)
		os.Exit(1)
	}
}
