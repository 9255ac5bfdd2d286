package pipeline

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"github.com/ironsheep/recipe-detect-mcp/internal/logging"
)

// BatchResult is the outcome for one image of a batch.
type BatchResult struct {
	Index    int       `json:"index"`
	Response *Response `json:"response,omitempty"`
	Err      error     `json:"-"`
}

// RunBatch runs the pipeline over imgs with at most workers runs in flight.
//
// Results are returned in input order. A failing image does not stop the
// others; its error is stored in the corresponding BatchResult. When ctx ends
// early the images never started carry ctx's error and RunBatch returns it.
func (p *Pipeline) RunBatch(ctx context.Context, imgs []image.Image, workers int) ([]BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(imgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, img := range imgs {
		if gctx.Err() != nil {
			break
		}
		i, img := i, img
		g.Go(func() error {
			resp, err := p.Run(gctx, img)
			results[i] = BatchResult{Index: i, Response: resp, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed, notStarted := 0, 0
	for i := range results {
		results[i].Index = i
		if results[i].Response == nil && results[i].Err == nil {
			results[i].Err = ctx.Err()
			notStarted++
		}
		if results[i].Err != nil {
			failed++
		}
	}
	p.log.Debug("batch finished",
		zap.Int(logging.FieldBatchSize, len(imgs)),
		zap.Int(logging.FieldWorkers, workers),
		zap.Int("failed", failed),
	)
	if notStarted > 0 {
		return results, ctx.Err()
	}
	return results, nil
}
