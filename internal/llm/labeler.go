package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/framescope/framescope/internal/model"
)

// Labeler wraps a Provider to produce store-ready automated labels.
type Labeler struct {
	provider Provider
}

// NewLabeler creates a labeler over an already-constructed provider.
func NewLabeler(provider Provider) *Labeler {
	return &Labeler{provider: provider}
}

// Service returns the provider name, used as the rate-limit key.
func (l *Labeler) Service() string {
	return l.provider.Name()
}

// LabelSnippet classifies one snippet. On API failure the returned label
// records the error with an empty frame and the error is also returned, so
// callers can both retry and persist the attempt. A reply that does not
// resolve to a closed-set category is not an API failure: it is recorded as
// unknown and left for a future run to pick up.
func (l *Labeler) LabelSnippet(ctx context.Context, snip model.Snippet) (model.AutoLabel, error) {
	label := model.AutoLabel{
		EpisodeID: snip.EpisodeID,
		Provider:  l.provider.Name(),
		LabeledAt: time.Now().UTC(),
	}

	cls, err := l.provider.ClassifyFrame(ctx, ClassifyRequest{Snippet: snip.Text})
	if err != nil {
		label.Err = err.Error()
		return label, err
	}

	label.Model = cls.Model
	label.Frame = cls.Frame
	if cls.Frame == model.FrameUnknown {
		label.Err = fmt.Sprintf("unrecognized category in reply %q", cls.Raw)
	}
	return label, nil
}
