package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pavelanni/worksheet/internal/api"
	"github.com/pavelanni/worksheet/internal/i18n"
	"github.com/pavelanni/worksheet/internal/session"
	"github.com/pavelanni/worksheet/internal/store"
	"github.com/pavelanni/worksheet/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	root := rootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		// Argument errors never reach a command body.
		if !errors.Is(err, errReported) {
			fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "worksheet",
		Short:         "Generate, solve and grade English exam worksheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.String("api-url", "http://localhost:8000/api", "Worksheet backend base URL")
	f.Duration("timeout", 60*time.Second, "HTTP request timeout (0 = none)")
	f.String("cache", defaultCachePath(), "SQLite cache path or redis:// URL (empty disables the cache)")
	f.StringP("lang", "l", "en", "Output language (en, ko)")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	f.String("log-file", "", "Also write logs to this file, rotated at 10 MB")
	f.String("metrics-file", "", "Write request metrics in Prometheus text format to this file on exit")
	f.Bool("trace", false, "Send W3C trace context headers with every request")

	root.AddCommand(
		healthCmd(),
		categoriesCmd(),
		optionsCmd(),
		generateCmd(),
		listCmd(),
		showCmd(),
		editCmd(),
		deleteQuestionCmd(),
		aiEditCmd(),
		solveCmd(),
		resultsCmd(),
		resultCmd(),
		reviewCmd(),
		uploadCmd(),
		exportCmd(),
		cacheCmd(),
		fakeBackendCmd(),
	)
	return root
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "worksheet-cache.db"
	}
	return filepath.Join(dir, "worksheet", "cache.db")
}

// setupLogging installs the default logger. The returned closer, if any,
// releases the log file.
func setupLogging(cmd *cobra.Command) io.Closer {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}

	var w io.Writer = cmd.ErrOrStderr()
	var closer io.Closer
	if path := v.GetString("log-file"); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		w = io.MultiWriter(w, lj)
		closer = lj
	}

	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(w, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
	return closer
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("WORKSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("worksheet")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/worksheet")
	v.AddConfigPath("/etc/worksheet")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// app is everything a command needs, built from flags, env and config.
type app struct {
	v       *viper.Viper
	client  *api.Client
	view    *view.Text
	cache   store.KV
	ctl     *session.Controller
	metrics *prometheus.Registry
	tracer  *sdktrace.TracerProvider
	logFile io.Closer
}

func newApp(cmd *cobra.Command) (*app, error) {
	a := &app{logFile: setupLogging(cmd)}
	v := viperForCmd(cmd)
	a.v = v

	tr, err := i18n.New(v.GetString("lang"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init i18n: %w", err)
	}
	a.view = view.NewText(cmd.OutOrStdout(), tr, 30*time.Second)

	clientOpts := []api.Option{api.WithTimeout(v.GetDuration("timeout"))}
	if v.GetString("metrics-file") != "" {
		a.metrics = prometheus.NewRegistry()
		m, err := api.NewMetrics(a.metrics)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		clientOpts = append(clientOpts, api.WithMetrics(m))
	}
	if v.GetBool("trace") {
		// No exporter: spans exist to give each request a trace context
		// that backend logs can be correlated with.
		a.tracer = sdktrace.NewTracerProvider()
		otel.SetTextMapPropagator(propagation.TraceContext{})
		clientOpts = append(clientOpts, api.WithTracerProvider(a.tracer))
	}
	a.client = api.NewClient(v.GetString("api-url"), clientOpts...)

	opts := []session.Option{}
	if target := v.GetString("cache"); target != "" {
		a.cache, err = store.Open(target)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open cache: %w", err)
		}
		opts = append(opts, session.WithCache(a.cache))
	}
	a.ctl = session.New(a.client, a.view, opts...)

	slog.Debug("client configured", "api_url", a.client.BaseURL(), "lang", tr.Lang(), "cache", v.GetString("cache"))
	return a, nil
}

func (a *app) Close() {
	if a.ctl != nil {
		a.ctl.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Warn("close cache", "error", err)
		}
	}
	if a.metrics != nil {
		path := a.v.GetString("metrics-file")
		if err := prometheus.WriteToTextfile(path, a.metrics); err != nil {
			slog.Warn("write metrics", "path", path, "error", err)
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			slog.Warn("shutdown tracer", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// errReported marks a command error that the view already printed.
var errReported = errors.New("reported")

// run wraps a command body with app setup and teardown. Errors are printed
// through the view once.
func run(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := fn(cmd, a, args); err != nil {
			if !a.view.Reported(err) {
				a.view.Error(err)
			}
			return fmt.Errorf("%w: %w", errReported, err)
		}
		return nil
	}
}
