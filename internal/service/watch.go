package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/medstock/internal/inventory"
)

// StartExpiryWatch periodically loads the expiration report and logs the
// bucket counts. It stops when ctx is done.
func StartExpiryWatch(
	ctx context.Context,
	stock *StockService,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report, err := stock.ExpirationReport(ctx, inventory.Today())
				if err != nil {
					log.Error("failed to load expiration report", zap.Error(err))
					continue
				}
				log.Info("expiration report",
					zap.Int("expired", report.Count(inventory.Expired)),
					zap.Int("within_7_days", report.Count(inventory.Within7)),
					zap.Int("within_30_days", report.Count(inventory.Within30)),
					zap.Int("low_stock", len(report.LowStock)),
				)
				if n := report.Count(inventory.Expired); n > 0 {
					log.Warn("expired medicine in stock", zap.Int("count", n))
				}
			}
		}
	}()
}
