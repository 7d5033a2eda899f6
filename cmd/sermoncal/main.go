package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"sermoncal/internal/config"
	"sermoncal/internal/ical"
	"sermoncal/internal/services/agenda"
	"sermoncal/internal/storage"
	logx "sermoncal/pkg/logx"
)

func main() {
	var (
		cfgPath   string
		exportDoc string
		scanOnce  bool
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.StringVar(&exportDoc, "export-ics", "", "export a document's presentations as iCalendar to stdout and exit")
	flag.BoolVar(&scanOnce, "scan", false, "run one agenda scan and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	logSvc, log := logx.New(cfg.Logging.Logx())
	defer logSvc.Close()
	mgr.SetLogger(log.With(logx.String("svc", "config")))

	storeCfg, err := cfg.Storage.Storage()
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	store, err := storage.Open(storeCfg, log.With(logx.String("svc", "storage")))
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	if store == nil {
		fmt.Println("fatal: storage is disabled")
		os.Exit(1)
	}
	defer store.Close()

	if exportDoc != "" {
		records, err := store.Load(ctx, exportDoc)
		if err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
		fmt.Print(ical.Export(exportDoc, records))
		return
	}

	svc := agenda.New(cfg.Agenda.Agenda(), store, log.With(logx.String("svc", "agenda")))

	if scanOnce {
		if err := svc.Scan(ctx); err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
		return
	}

	if svc.Enabled() {
		if err := svc.Start(ctx); err != nil {
			fmt.Println("fatal start:", err)
			os.Exit(1)
		}
		defer svc.Stop()
	}

	// Hot reload: logging sinks follow the file; storage and agenda changes
	// need a restart.
	go func() {
		err := mgr.Watch(ctx, func(c *config.Config) {
			logSvc.Apply(c.Logging.Logx())
		})
		if err != nil {
			log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info("sermoncal started", logx.String("config", cfgPath))

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	log.Info("sermoncal stopped")
}
