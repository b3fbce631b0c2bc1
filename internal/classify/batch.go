package classify

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/layer/internal/resolve"
)

// Result is the outcome for one path in a batch.
type Result struct {
	Path  string
	Entry Entry
	Err   error
}

// ClassifyAll classifies user-supplied paths in parallel. Paths may be
// absolute or relative to root. A failure on one path (for example a path
// outside the repository) is reported in its Result and does not stop the
// batch. Results keep input order.
func (c *Classifier) ClassifyAll(ctx context.Context, root string, paths []string) []Result {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, p := range paths {
		g.Go(func() error {
			results[i].Path = p
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			cand, err := resolve.NewCandidate(root, p)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Entry = c.Entry(cand)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ClassifyCandidates classifies already-built candidates in parallel,
// keeping input order.
func (c *Classifier) ClassifyCandidates(ctx context.Context, cands []resolve.Candidate) ([]Entry, error) {
	entries := make([]Entry, len(cands))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, cand := range cands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries[i] = c.Entry(cand)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
