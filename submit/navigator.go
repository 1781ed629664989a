package submit

import (
	"context"

	"github.com/nojima/httpform-go/page"
	"go.uber.org/zap"
)

// BrowseNavigator replaces the page location with a fixed path on click.
type BrowseNavigator struct {
	href     string
	location page.Location
	logger   *zap.Logger
}

func NewBrowseNavigator(href string, doc *page.Document, logger *zap.Logger) *BrowseNavigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowseNavigator{
		href:     href,
		location: doc.Location(),
		logger:   logger.With(zap.String("href", href)),
	}
}

// HandleClick is the page.ClickListener for the button.
func (n *BrowseNavigator) HandleClick(ctx context.Context, _ *page.ClickEvent) {
	n.logger.Debug("navigating")
	if err := n.location.Replace(ctx, n.href); err != nil {
		n.logger.Error("navigation failed", zap.Error(err))
	}
}
