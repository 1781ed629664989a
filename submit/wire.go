package submit

import (
	"context"

	"github.com/nojima/httpform-go/page"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Wire returns the page-load listener that binds a submit handler to every
// form and a navigator to every button of the document's layout.
func Wire(fetcher Fetcher, logger *zap.Logger) page.LoadListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(_ context.Context, doc *page.Document) error {
		layout := doc.Layout()
		for _, form := range layout.Forms {
			handler, err := NewHandler(ConfigFromForm(form), doc, fetcher, logger.With(zap.String("form", form.ID)))
			if err != nil {
				return errors.Wrapf(err, "form '%s'", form.ID)
			}
			if err := doc.AddSubmitListener(form.ID, handler.HandleSubmit); err != nil {
				return err
			}
		}
		for _, button := range layout.Buttons {
			navigator := NewBrowseNavigator(button.Href, doc, logger.With(zap.String("button", button.ID)))
			if err := doc.AddClickListener(button.ID, navigator.HandleClick); err != nil {
				return err
			}
		}
		return nil
	}
}
