// Command bgparchive decodes an archive of BGP messages — a plain file
// of concatenated messages, optionally OpenBMP-wrapped and/or
// zstd-compressed — and optionally persists and/or republishes the
// route events it finds.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	bgp "github.com/bgparchive/bgparchive"
	"github.com/bgparchive/bgparchive/internal/archive"
	"github.com/bgparchive/bgparchive/internal/config"
	"github.com/bgparchive/bgparchive/internal/httpapi"
	"github.com/bgparchive/bgparchive/internal/observability"
	"github.com/bgparchive/bgparchive/internal/publish"
	"github.com/bgparchive/bgparchive/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "decode":
		runDecode()
	case "serve":
		runServe()
	case "migrate":
		runMigrate()
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: bgparchive <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  decode      Decode an archive and print each message to stdout")
	fmt.Println("  serve       Decode an archive, optionally persisting/republishing events")
	fmt.Println("  migrate     Run event-store database migrations")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>   Path to configuration YAML file")
	fmt.Println("  --log-level <lvl> Override log level (debug, info, warn, error)")
}

func parseFlags(args []string) (configPath, logLevel string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		case "--log-level":
			if i+1 < len(args) {
				logLevel = args[i+1]
				i++
			}
		}
	}
	return
}

func loadConfig(args []string) (*config.Config, *zap.Logger) {
	configPath, logLevelOverride := parseFlags(args)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if logLevelOverride != "" {
		cfg.Service.LogLevel = logLevelOverride
	}
	return cfg, observability.NewLogger(cfg.Service.LogLevel)
}

func openArchive(cfg *config.Config) (io.ReadCloser, error) {
	if cfg.Archive.Path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(cfg.Archive.Path)
}

// sessionCapabilities builds the bgp.Capabilities descriptor used to
// resolve ADD-PATH/AS_PATH ambiguity while decoding archived UPDATEs.
func sessionCapabilities(cfg *config.Config) bgp.Capabilities {
	caps := bgp.Capabilities{
		FourByteASN: cfg.Session.FourByteASN,
		AddPath:     map[bgp.AfiSafi]bgp.AddPathDirection{},
	}
	for _, entry := range cfg.Session.AddPathAFIs {
		afiSafi, ok := parseAfiSafi(entry)
		if !ok {
			continue
		}
		caps.AddPath[afiSafi] = bgp.AddPathSendReceive
	}
	return caps
}

func parseAfiSafi(s string) (bgp.AfiSafi, bool) {
	switch s {
	case "ipv4/unicast":
		return bgp.AfiSafi{AFI: bgp.AFI_IPV4, SAFI: bgp.SAFI_UNICAST}, true
	case "ipv6/unicast":
		return bgp.AfiSafi{AFI: bgp.AFI_IPV6, SAFI: bgp.SAFI_UNICAST}, true
	case "ipv4/mpls":
		return bgp.AfiSafi{AFI: bgp.AFI_IPV4, SAFI: bgp.SAFI_MPLS}, true
	case "ipv4/mpls_vpn":
		return bgp.AfiSafi{AFI: bgp.AFI_IPV4, SAFI: bgp.SAFI_MPLS_VPN}, true
	default:
		return bgp.AfiSafi{}, false
	}
}

func runDecode() {
	cfg, logger := loadConfig(os.Args[2:])
	defer logger.Sync()

	src, err := openArchive(cfg)
	if err != nil {
		logger.Fatal("failed to open archive", zap.Error(err))
	}
	defer src.Close()

	reader, err := archive.NewReader(src, archive.Options{
		OpenBMPFramed:   cfg.Archive.OpenBMPFramed,
		ZstdCompressed:  cfg.Archive.ZstdCompressed,
		MaxPayloadBytes: cfg.Archive.MaxPayloadBytes,
	})
	if err != nil {
		logger.Fatal("failed to construct archive reader", zap.Error(err))
	}
	defer reader.Close()

	caps := sessionCapabilities(cfg)

	count := 0
	for {
		frame, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Fatal("archive framing error", zap.Error(err))
		}
		count++

		msg, err := bgp.DecodeMessageBytes(frame.Raw, caps)
		if err != nil {
			fmt.Printf("=== frame %d (event_id=%s, %d bytes): decode error: %v ===\n",
				count, hex.EncodeToString(frame.EventID), len(frame.Raw), err)
			continue
		}

		fmt.Printf("=== frame %d (event_id=%s, %d bytes): %s ===\n",
			count, hex.EncodeToString(frame.EventID), len(frame.Raw), msg.Kind)
		printMessage(msg)
	}
	fmt.Printf("Total frames: %d\n", count)
}

func printMessage(msg bgp.Message) {
	switch msg.Kind {
	case bgp.MessageKindOpen:
		fmt.Printf("  OPEN asn=%d hold_time=%d identifier=%#x capabilities=%d\n",
			msg.Open.ASN, msg.Open.HoldTime, msg.Open.BGPIdentifier, len(msg.Open.AllCapabilities()))
	case bgp.MessageKindUpdate:
		events := store.ExtractRouteEvents(msg)
		if len(events) == 0 && msg.Update.IsEndOfRIB() {
			fmt.Println("  End-of-RIB")
			break
		}
		for i, ev := range events {
			if i < 5 || i == len(events)-1 {
				fmt.Printf("  [%d] %s %s nexthop=%s as_path=%q\n", i, ev.Action, ev.Prefix, ev.Nexthop, ev.ASPath)
			} else if i == 5 {
				fmt.Printf("  ... (%d more) ...\n", len(events)-6)
			}
		}
	case bgp.MessageKindNotification:
		fmt.Printf("  NOTIFICATION %s\n", msg.Notification.String())
	case bgp.MessageKindKeepalive:
		fmt.Println("  KEEPALIVE")
	case bgp.MessageKindRouteRefresh:
		fmt.Printf("  ROUTE-REFRESH afi=%s safi=%s\n", msg.RouteRefresh.AFI, msg.RouteRefresh.SAFI)
	}
}

func runServe() {
	cfg, logger := loadConfig(os.Args[2:])
	defer logger.Sync()

	observability.Register()

	logger.Info("starting bgparchive",
		zap.String("instance_id", cfg.Service.InstanceID),
		zap.String("archive_path", cfg.Archive.Path),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writer *store.Writer
	var dbChecker httpapi.DBChecker
	if cfg.Store.Enabled {
		pool, err := store.NewPool(ctx, cfg.Store.DSN, cfg.Store.MaxConns, cfg.Store.MinConns)
		if err != nil {
			logger.Fatal("failed to connect to event store", zap.Error(err))
		}
		defer pool.Close()
		writer = store.NewWriter(pool, logger.Named("store"))
		dbChecker = writer
	}

	var producer *publish.Producer
	if cfg.Publish.Enabled {
		tlsCfg, err := cfg.Publish.BuildTLSConfig()
		if err != nil {
			logger.Fatal("failed to build publish TLS config", zap.Error(err))
		}
		producer, err = publish.NewProducer(cfg.Publish.Brokers, cfg.Publish.Topic, cfg.Publish.ClientID,
			tlsCfg, cfg.Publish.BuildSASLMechanism(), logger.Named("publish"))
		if err != nil {
			logger.Fatal("failed to construct publisher", zap.Error(err))
		}
		defer producer.Close()
	}

	httpServer := httpapi.NewServer(cfg.Service.HTTPListen, dbChecker, logger.Named("http"))
	if err := httpServer.Start(); err != nil {
		logger.Fatal("failed to start HTTP server", zap.Error(err))
	}

	done := make(chan error, 1)
	go func() { done <- processArchive(ctx, cfg, logger, writer, producer) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-done:
		if err != nil {
			logger.Error("archive processing failed", zap.Error(err))
		} else {
			logger.Info("archive processing complete")
		}
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		<-done
	}

	shutdownTimeout := time.Duration(cfg.Service.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	logger.Info("bgparchive stopped")
}

func processArchive(ctx context.Context, cfg *config.Config, logger *zap.Logger, writer *store.Writer, producer *publish.Producer) error {
	src, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer src.Close()

	reader, err := archive.NewReader(src, archive.Options{
		OpenBMPFramed:   cfg.Archive.OpenBMPFramed,
		ZstdCompressed:  cfg.Archive.ZstdCompressed,
		MaxPayloadBytes: cfg.Archive.MaxPayloadBytes,
	})
	if err != nil {
		return fmt.Errorf("constructing archive reader: %w", err)
	}
	defer reader.Close()

	caps := sessionCapabilities(cfg)
	const batchSize = 500
	var rows []store.Row

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		observability.BatchSize.WithLabelValues("store").Observe(float64(len(rows)))
		if writer != nil {
			if _, err := writer.FlushBatch(ctx, rows); err != nil {
				return err
			}
		}
		if producer != nil {
			for _, r := range rows {
				if err := producer.PublishBatch(ctx, r.EventID, []store.RouteEvent{r.Event}); err != nil {
					return err
				}
			}
		}
		rows = rows[:0]
		return nil
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		frame, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("archive framing: %w", err)
		}

		start := time.Now()
		msg, err := bgp.DecodeMessageBytes(frame.Raw, caps)
		if err != nil {
			kind := "unknown"
			if k, ok := bgp.KindOf(err); ok {
				kind = k.String()
			}
			observability.DecodeErrorsTotal.WithLabelValues("archive", kind).Inc()
			logger.Warn("failed to decode archived message", zap.Error(err))
			continue
		}
		observability.DecodeDuration.WithLabelValues(msg.Kind.String()).Observe(time.Since(start).Seconds())
		observability.MessagesDecodedTotal.WithLabelValues("archive", msg.Kind.String()).Inc()

		for _, ev := range store.ExtractRouteEvents(msg) {
			rows = append(rows, store.Row{EventID: frame.EventID, Event: ev})
		}
		if len(rows) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func runMigrate() {
	cfg, logger := loadConfig(os.Args[2:])
	defer logger.Sync()

	if !cfg.Store.Enabled {
		logger.Fatal("migrate requires store.enabled and store.dsn to be set")
	}

	ctx := context.Background()
	pool, err := store.NewPool(ctx, cfg.Store.DSN, cfg.Store.MaxConns, cfg.Store.MinConns)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := store.RunMigrations(ctx, pool, migrationsDir(), logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migrations complete")
}

func migrationsDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "migrations"
	}
	return filepath.Join(filepath.Dir(exe), "migrations")
}
