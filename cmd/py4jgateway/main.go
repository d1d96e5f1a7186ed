// Command py4jgateway runs the host-side gateway listener: it loads
// configuration, wires logging, metrics, and the reflection catalog, then
// accepts peer connections and serves each one until shutdown.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	spfcbr "github.com/spf13/cobra"

	"github.com/mucharafal/py4j/callback"
	"github.com/mucharafal/py4j/config"
	"github.com/mucharafal/py4j/gateway"
	"github.com/mucharafal/py4j/logger"
	"github.com/mucharafal/py4j/metrics"
	"github.com/mucharafal/py4j/resolve/govalue"

	"net/http"
)

var (
	cfgDir        string
	metricsAddr   string
	strictUnknown bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("py4jgateway: %v", err))
		os.Exit(1)
	}
}

func newRootCommand() *spfcbr.Command {
	root := &spfcbr.Command{
		Use:   "py4jgateway",
		Short: "Host-side gateway bridging a peer process to registered Go objects",
		RunE:  runServe,
	}
	root.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "directory holding py4jgateway.yaml (default ~/.py4jgateway)")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on, e.g. :9090 (empty disables)")
	root.Flags().BoolVar(&strictUnknown, "strict-unknown-command", false, "reply with a protocol error for unrecognized commands instead of dropping them")
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *spfcbr.Command {
	return &spfcbr.Command{
		Use:   "version",
		Short: "Print the gateway version",
		RunE: func(cmd *spfcbr.Command, _ []string) error {
			cmd.Println("py4jgateway (development build)")
			return nil
		},
	}
}

// sample is registered under the entry point's own package so a fresh
// gateway has at least one importable class to exercise reflection/dir
// commands against before the embedding program registers its own.
type sample struct{ Greeting string }

func newSample(greeting string) *sample { return &sample{Greeting: greeting} }

func (s *sample) Greet() string { return s.Greeting }

func runServe(cmd *spfcbr.Command, _ []string) error {
	out := colorable.NewColorableStdout()

	log := logger.New()
	src, err := config.Load(cfgDir, log)
	if err != nil {
		return err
	}
	cfg := src.Current()
	log.SetLevel(cfg.LogLevel())
	logger.BridgeSPF13(log, cfg.LogLevel())
	if err := src.Watch(); err != nil {
		return err
	}

	fmt.Fprintln(out, color.GreenString("py4jgateway listening on %s:%d", cfg.Listen.Address, cfg.Listen.Port))

	catalog := govalue.NewCatalog()
	catalog.RegisterClass("py4jgateway.Sample", &sample{})
	if err := catalog.RegisterConstructor("py4jgateway.Sample", newSample); err != nil {
		return err
	}

	reg := metrics.New(prometheus.DefaultRegisterer)
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, log)
	}

	gw := gateway.New(
		nil,
		gateway.WithLogger(log),
		gateway.WithResolver(govalue.NewResolver(catalog)),
		gateway.WithStrictUnknownCommand(strictUnknown),
		gateway.WithMetrics(reg),
	)
	if err := gw.Startup(context.Background()); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Listen.Address, cfg.Listen.Port))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	go acceptLoop(ctx, ln, gw, reg, log, cfg.Auth, &wg)

	waitForSignal()
	log.Info("shutting down")

	cancel()
	_ = ln.Close()
	wg.Wait()
	return gw.Shutdown()
}

func acceptLoop(ctx context.Context, ln net.Listener, gw *gateway.Gateway, reg *metrics.Metrics, log logger.Logger, auth config.Auth, wg *sync.WaitGroup) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Error("accept failed", err)
				return
			}
		}

		c, err := callback.New(conn, gw, true, log)
		if err != nil {
			log.Error("failed to wrap accepted connection", err)
			_ = conn.Close()
			continue
		}
		if auth.Enabled {
			c.RequireToken(auth.Token)
		}

		reg.OpenConnections.Inc()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer reg.OpenConnections.Dec()
			if err := c.ServeInbound(ctx); err != nil {
				log.Error("connection terminated", err)
			}
		}()
	}
}

func serveMetrics(addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics listener stopped", err)
	}
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
