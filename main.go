package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/scipunch/feedsearch/config"
	"github.com/scipunch/feedsearch/fetcher"
	"github.com/scipunch/feedsearch/server"
)

func main() {
	var cfgPath string
	var envPath string
	var port int
	flag.StringVar(&cfgPath, "config", config.DefaultPath(), "path to a TOML config")
	flag.StringVar(&envPath, "env", ".env", "path to an optional dotenv file")
	flag.IntVar(&port, "port", 0, "listen port, overrides config and PORT")
	flag.Parse()

	if err := config.LoadDotEnv(envPath); err != nil {
		log.Fatalf("failed to load environment with %s", err)
	}

	// Read config and create if default is missing
	conf, err := config.Read(cfgPath)
	if errors.Is(err, os.ErrNotExist) && cfgPath == config.DefaultPath() {
		if err := config.Write(cfgPath, conf); err != nil {
			slog.Warn("failed to write default config", "path", cfgPath, "error", err)
		}
	} else if err != nil {
		log.Fatalf("failed to read config with %s", err)
	}
	if err := conf.ApplyEnv(); err != nil {
		log.Fatalf("failed to apply environment with %s", err)
	}
	if port != 0 {
		conf.Port = port
	}
	if err := conf.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	slog.SetDefault(newLogger(os.Stderr, conf.Log))

	var opts []server.Option
	if conf.Log.AccessLog {
		accessLogger, err := server.NewAccessLogger(logFormat(conf.Log), conf.Log.Level)
		if err != nil {
			log.Fatalf("failed to build access logger with %s", err)
		}
		opts = append(opts, server.WithAccessLogger(accessLogger))
	}

	f := fetcher.NewRSSFetcher(
		fetcher.WithTimeout(conf.FetchTimeout.Duration),
		fetcher.WithUserAgent(conf.UserAgent),
	)
	srv := server.New(conf, f, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	printBanner(os.Stdout, conf.Port)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed with %s", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}

// logFormat resolves "auto" to text on a terminal and JSON otherwise
func logFormat(l config.Log) string {
	if l.Format != "" && l.Format != "auto" {
		return l.Format
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return "text"
	}
	return "json"
}

func newLogger(w io.Writer, l config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if logFormat(l) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func printBanner(w io.Writer, port int) {
	rule := strings.Repeat("=", 61)
	title := color.New(color.FgCyan, color.Bold).SprintFunc()
	link := color.New(color.FgGreen).SprintFunc()
	base := fmt.Sprintf("http://localhost:%d", port)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, title("                      Feed Search API"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, " Server listening on %s\n", link(base))
	fmt.Fprintf(w, " HTML page at        %s\n", link(base+"/rss"))
	fmt.Fprintf(w, " JSON document at    %s\n", link(base+"/rss?format=json"))
	fmt.Fprintln(w, rule)
}
