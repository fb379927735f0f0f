package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rapidautoparts/storefront/config"
	"github.com/rapidautoparts/storefront/internal/adminapi"
	"github.com/rapidautoparts/storefront/internal/app"
	"github.com/rapidautoparts/storefront/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h           = flag.Bool("h", false, "help usage")
	showVer     = flag.Bool("v", false, "show version")
	conffile    = flag.String("c", "", "config yaml file")
	initDB      = flag.Bool("initdb", false, "drop and recreate all tables, then seed the admin operator")
	seedCatalog = flag.Bool("seed", false, "seed any demo catalog products whose partId is missing")
	patchImages = flag.String("patch-images", "", "apply a partId,imageUrl csv file to the catalog and exit")
	sweepAge    = flag.Duration("sweep-uploads", 0, "remove unreferenced uploads older than the given age and exit")
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "develop"

func printHelp() {
	if *h {
		ustr := fmt.Sprintf("storefront version: %s, Usage: storefront -h\nOptions:", Version)
		fmt.Fprintln(os.Stderr, ustr)
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(Version)
		os.Exit(0)
	}
	printHelp()

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *seedCatalog {
		cfg.System.SeedCatalog = true
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer application.Release()

	switch {
	case *initDB:
		application.InitDb()
		application.Bootstrap()
		zap.S().Info("database reset complete")
		return
	case *patchImages != "":
		if err := runPatchImages(application, *patchImages); err != nil {
			zap.S().Error(err)
			os.Exit(1)
		}
		return
	case *sweepAge > 0:
		removed, err := application.SweepUploads(context.Background(), *sweepAge)
		if err != nil {
			zap.S().Error(err)
			os.Exit(1)
		}
		zap.S().Infof("removed %d unreferenced uploads", removed)
		return
	}

	webserver.Init(application)
	adminapi.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webserver.Listen(gctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Errorf("web server stopped: %v", err)
	}
	zap.S().Info("storefront shutdown")
}

func runPatchImages(application *app.Application, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	result, err := application.PatchImages(ctx, "cli", f)
	if err != nil {
		return err
	}
	zap.S().Infof("updated %d products, %d part ids not found, %d failed",
		result.Updated, len(result.Missing), len(result.Failed))
	for _, id := range result.Missing {
		zap.S().Warnf("no product with partId %s", id)
	}
	for _, failure := range result.Failed {
		zap.S().Warnf("partId %s: %s", failure.PartID, failure.Error)
	}
	return nil
}
