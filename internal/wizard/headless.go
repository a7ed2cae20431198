package wizard

import (
	"context"

	"github.com/mark3labs/scriptwiz/internal/api"
)

// RunHeadless walks a fresh controller through every step without a UI:
// select req.Category, generate req, then finish. When download is set the
// artifact is handed to the controller's Navigator before completing.
func RunHeadless(ctx context.Context, c *Controller, req api.GenerationRequest, download bool) (Snapshot, error) {
	c.SelectOption(req.Category)
	for c.Snapshot().Step < StepGenerate {
		if err := c.GoNext(ctx); err != nil {
			return c.Snapshot(), err
		}
	}

	if _, err := c.RequestGeneration(ctx, req); err != nil {
		return c.Snapshot(), err
	}

	for c.Snapshot().Step < StepDownload {
		if err := c.GoNext(ctx); err != nil {
			return c.Snapshot(), err
		}
	}
	if download {
		if _, err := c.DownloadArtifact(ctx); err != nil {
			return c.Snapshot(), err
		}
	}
	if err := c.GoNext(ctx); err != nil {
		return c.Snapshot(), err
	}
	return c.Snapshot(), nil
}
