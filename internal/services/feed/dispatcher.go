package feed

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"feedsync/internal/logger"
	"feedsync/internal/models"
)

// dispatchBatchSize bounds the concurrent fan-out per batch. Upstream fetch
// batching already limits record counts to the same size.
const dispatchBatchSize = 25

// Target identifies one market's feed destination.
type Target struct {
	MerchantID      string
	DataSourceID    string
	ContentLanguage string
	FeedLabel       string
}

// feedAPI is the slice of Client the dispatcher needs. Tests substitute it.
type feedAPI interface {
	InsertProductInput(ctx context.Context, merchantID, dataSourceID string, input *models.ProductInput) error
	DeleteProductInput(ctx context.Context, merchantID, dataSourceID, name string) error
}

// Dispatcher batches transformed records into upsert and delete calls.
// Requests within a batch run concurrently and fail fast as a group.
type Dispatcher struct {
	api    feedAPI
	logger *logger.Logger
}

func NewDispatcher(api feedAPI, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{api: api, logger: logger}
}

// FeedID is the destination's addressing triple. Upsert and delete must
// derive it identically for delete to target the record upsert created.
func FeedID(language, feedLabel, sku string) string {
	return fmt.Sprintf("%s~%s~%s", language, feedLabel, sku)
}

// InputName is the full resource name of a product input.
func InputName(merchantID, language, feedLabel, sku string) string {
	return fmt.Sprintf("accounts/%s/productInputs/%s", merchantID, FeedID(language, feedLabel, sku))
}

// Upsert dispatches the records in bounded batches. Empty input is a no-op.
func (d *Dispatcher) Upsert(ctx context.Context, target Target, inputs []*models.ProductInput) error {
	if len(inputs) == 0 {
		return nil
	}

	for start := 0; start < len(inputs); start += dispatchBatchSize {
		end := start + dispatchBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, input := range inputs[start:end] {
			input := input
			g.Go(func() error {
				return d.api.InsertProductInput(gctx, target.MerchantID, target.DataSourceID, input)
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to upsert product inputs: %w", err)
		}
	}

	d.logger.Info("upserted %d product inputs to merchant %s", len(inputs), target.MerchantID)
	return nil
}

// Delete removes the feed records for the given SKUs. Empty input is a no-op.
func (d *Dispatcher) Delete(ctx context.Context, target Target, skus []string) error {
	if len(skus) == 0 {
		return nil
	}

	for start := 0; start < len(skus); start += dispatchBatchSize {
		end := start + dispatchBatchSize
		if end > len(skus) {
			end = len(skus)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, sku := range skus[start:end] {
			name := InputName(target.MerchantID, target.ContentLanguage, target.FeedLabel, sku)
			g.Go(func() error {
				return d.api.DeleteProductInput(gctx, target.MerchantID, target.DataSourceID, name)
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to delete product inputs: %w", err)
		}
	}

	d.logger.Info("deleted %d product inputs from merchant %s", len(skus), target.MerchantID)
	return nil
}
