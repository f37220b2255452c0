package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-shop/meridian/internal/ledger"
)

// ViolationScanner lists ledger rows breaking the reserved-within-on-hand
// invariant.
type ViolationScanner interface {
	ScanViolations(ctx context.Context) ([]ledger.Violation, error)
}

// LedgerIntegrityHandler returns the handler for TaskLedgerIntegrity.
// Violations are corruption signals: they are logged loudly for an operator
// to investigate, never repaired in place.
func LedgerIntegrityHandler(scanner ViolationScanner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		violations, err := scanner.ScanViolations(ctx)
		if err != nil {
			logger.Error("ledger integrity scan failed", slog.Any("error", err))
			return err
		}
		if len(violations) == 0 {
			logger.Info("ledger integrity scan clean")
			return nil
		}
		for _, v := range violations {
			logger.Error("ledger integrity violation",
				slog.Int64("product_id", v.ProductID),
				slog.Int64("office_id", v.OfficeID),
				slog.String("quantity", v.Quantity.String()),
				slog.String("reserved", v.Ordered.String()),
				slog.String("reason", v.Reason),
			)
		}
		return nil
	}
}
