package crm

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/inbox-crm/internal/model"
)

// ScanResult pairs an unread email with its extraction outcome.
type ScanResult struct {
	Email      model.Email              `json:"email"`
	Suggestion *model.ExtractedDealData `json:"suggestion"`
}

// ScanUnread analyzes every unread email concurrently, at most
// concurrency calls in flight. Individual provider failures degrade to
// the fallback payload inside the analyzer; only the fatal
// missing-credential error aborts the scan. Results keep inbox order.
// The pending-suggestion slot is not touched: a scan is a bulk read, not
// a selection.
func (s *Service) ScanUnread(ctx context.Context, concurrency int) ([]ScanResult, error) {
	emails, err := s.store.Emails(ctx)
	if err != nil {
		return nil, err
	}

	var unread []model.Email
	for _, e := range emails {
		if !e.IsRead {
			unread = append(unread, e)
		}
	}
	if len(unread) == 0 {
		return nil, nil
	}

	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]ScanResult, len(unread))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, e := range unread {
		g.Go(func() error {
			suggestion, err := s.analyzer.Analyze(ctx, e.Body, e.Sender, e.Subject)
			if err != nil {
				return err
			}
			results[i] = ScanResult{Email: e, Suggestion: suggestion}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
