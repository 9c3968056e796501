// Package main signs wallet save links for receipts stored before the wallet
// issuer was configured. It only fills receipts that have no link.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/raseed-labs/raseed-backend/config"
	"github.com/raseed-labs/raseed-backend/db"
	"github.com/raseed-labs/raseed-backend/internal/store/postgres"
	"github.com/raseed-labs/raseed-backend/internal/wallet"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"go.uber.org/zap"
)

type receiptSource interface {
	ListMissingWalletLinks(ctx context.Context, limit int) ([]types.Receipt, error)
	SetWalletLink(ctx context.Context, userID, id, link string) error
}

type receiptLinker interface {
	ReceiptLink(receipt *types.Receipt) (string, error)
}

type summary struct {
	Total  int
	Linked int64
	Errors int64
}

func main() {
	dryRun := flag.Bool("dry-run", false, "List receipts that would be linked without signing anything")
	concurrency := flag.Int("concurrency", 4, "Number of receipts processed in parallel")
	limit := flag.Int("limit", 500, "Maximum receipts processed in one run")
	flag.Parse()

	logger.InitLogger()
	log := logger.GetLogger().Named("backfill")
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("Failed to load config", "error", err)
	}
	if !cfg.Wallet.Enabled() {
		log.Fatal("Wallet issuer is not configured; set WALLET_ISSUER_ID and WALLET_SERVICE_ACCOUNT_FILE")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
	if err != nil {
		log.Fatalw("Failed to configure database pool", "error", err)
	}
	dbClient := db.NewDatabaseClient(poolConfig)
	if err := dbClient.Connect(ctx); err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer dbClient.Close()

	sa, err := wallet.LoadServiceAccount(cfg.Wallet.ServiceAccountFile)
	if err != nil {
		log.Fatalw("Failed to load wallet service account", "error", err)
	}
	issuer, err := wallet.NewIssuer(cfg.Wallet.IssuerID, sa,
		wallet.WithOrigins(cfg.Wallet.Origins...),
		wallet.WithLogoURI(cfg.Wallet.LogoURI))
	if err != nil {
		log.Fatalw("Failed to create wallet issuer", "error", err)
	}

	store := postgres.NewReceiptStore(dbClient.GetPool())
	result, err := backfill(ctx, store, issuer, *limit, *concurrency, *dryRun, log)
	if err != nil {
		log.Fatalw("Backfill failed", "error", err)
	}

	log.Infow("Backfill finished",
		"total", result.Total,
		"linked", result.Linked,
		"errors", result.Errors,
		"dry_run", *dryRun)
	if result.Errors > 0 {
		os.Exit(1)
	}
}

func backfill(ctx context.Context, src receiptSource, linker receiptLinker, limit, concurrency int, dryRun bool, log *zap.SugaredLogger) (summary, error) {
	receipts, err := src.ListMissingWalletLinks(ctx, limit)
	if err != nil {
		return summary{}, err
	}
	result := summary{Total: len(receipts)}
	if result.Total == 0 || dryRun {
		for i, r := range receipts {
			fmt.Printf("  [%d/%d] %s %s %s\n", i+1, result.Total, r.ID, r.UserID, r.VendorName)
		}
		return result, nil
	}

	if concurrency < 1 {
		concurrency = 1
	}
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)
	for i := range receipts {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}

		go func(r *types.Receipt) {
			defer wg.Done()
			defer func() { <-sem }()

			link, err := linker.ReceiptLink(r)
			if err != nil {
				log.Warnw("Failed to sign wallet link", "receipt_id", r.ID, "error", err)
				atomic.AddInt64(&result.Errors, 1)
				return
			}
			if err := src.SetWalletLink(ctx, r.UserID, r.ID, link); err != nil {
				log.Warnw("Failed to store wallet link", "receipt_id", r.ID, "error", err)
				atomic.AddInt64(&result.Errors, 1)
				return
			}
			atomic.AddInt64(&result.Linked, 1)
		}(&receipts[i])
	}
	wg.Wait()
	return result, ctx.Err()
}
