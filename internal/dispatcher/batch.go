package dispatcher

import (
	"context"

	"github.com/MKhiriev/farmlink/models"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one request of a batch.
type Result struct {
	Response *models.Response
	Err      error
}

// Batch dispatches all reqs concurrently, at most batchConcurrency at a time,
// and returns one Result per request in the same order. A failed request
// does not affect the others.
func (d *Dispatcher) Batch(ctx context.Context, reqs []models.Request) []Result {
	results := make([]Result, len(reqs))

	var g errgroup.Group
	g.SetLimit(d.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := d.Dispatch(ctx, req)
			results[i] = Result{Response: resp, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// BatchAll is the all-or-nothing form of Batch: the first failure cancels
// the requests still in flight and is returned. On success the responses are
// in request order.
func (d *Dispatcher) BatchAll(ctx context.Context, reqs []models.Request) ([]*models.Response, error) {
	responses := make([]*models.Response, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := d.Dispatch(gctx, req)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return responses, nil
}
