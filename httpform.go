package httpform

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/nojima/httpform-go/exchange"
	"github.com/nojima/httpform-go/flags"
	"github.com/nojima/httpform-go/input"
	"github.com/nojima/httpform-go/output"
	"github.com/nojima/httpform-go/page"
	"github.com/nojima/httpform-go/submit"
	"github.com/nojima/httpform-go/version"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrSubmissionFailed is returned when the submitted form's output shows
// the fixed failure message instead of a response.
var ErrSubmissionFailed = errors.New("form submission failed")

type Options struct {
	// Transport is used for every request when non-nil.
	Transport http.RoundTripper
}

// Environment is the process surroundings Run works against.
type Environment struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Terminal flags.TerminalInfo
}

func Main(options *Options) error {
	return Run(os.Args, Environment{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Terminal: flags.DetectTerminal(),
	}, options)
}

// Run loads the page, dispatches one submit or click on the target named on
// the command line and prints what the page shows afterwards.
func Run(args []string, env Environment, options *Options) error {
	// Parse flags
	flagSet, optionSet, err := flags.Parse(args, env.Terminal)
	if _, ok := errors.Cause(err).(*input.UsageError); ok {
		flagSet.PrintUsage(env.Stderr)
		return err
	}
	if err != nil {
		return err
	}

	switch {
	case optionSet.Help:
		flagSet.PrintUsage(env.Stdout)
		return nil
	case optionSet.ShowVersion:
		fmt.Fprintf(env.Stdout, "httpform-go %s\n", version.Current())
		return nil
	case optionSet.ShowLicenses:
		version.PrintLicenses(env.Stdout)
		return nil
	}

	logger := newLogger(env.Stderr, optionSet.Verbose)
	defer logger.Sync()

	// Parse positional arguments
	in, err := input.ParseArgs(flagSet.Args(), env.Stdin, &optionSet.InputOptions)
	if _, ok := errors.Cause(err).(*input.UsageError); ok {
		flagSet.PrintUsage(env.Stderr)
		return err
	}
	if err != nil {
		return err
	}

	layout, err := loadLayout(&optionSet.PageOptions)
	if err != nil {
		return err
	}
	kind, targetID, err := layout.Resolve(in.Target)
	if err != nil {
		return err
	}

	exchangeOptions := optionSet.ExchangeOptions
	if options != nil && options.Transport != nil {
		exchangeOptions.Transport = options.Transport
	}
	client, err := exchange.NewClient(in.Origin, &exchangeOptions)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(env.Stdout)
	defer writer.Flush()
	outputOptions := &optionSet.OutputOptions
	printer := output.NewPrettyPrinter(output.PrettyPrinterConfig{
		Writer:      writer,
		EnableColor: outputOptions.EnableColor,
	})
	observeExchange(client, printer, outputOptions, logger)

	location := exchange.NewLocation(client, pageHandler(printer, outputOptions, env.Stderr, logger))
	doc := page.New(layout, location)
	doc.OnLoad(submit.Wire(client, logger))
	if err := doc.Load(context.Background()); err != nil {
		return err
	}
	logger.Debug("page loaded", zap.String("layout", layout.Name), zap.String("origin", in.Origin.String()))

	switch kind {
	case page.FormTarget:
		return submitForm(doc, targetID, in, printer, outputOptions)
	case page.ButtonTarget:
		if err := doc.Click(targetID); err != nil {
			return err
		}
		doc.Wait()
		return location.Err()
	default:
		return errors.Errorf("unsupported target: %s", in.Target)
	}
}

func loadLayout(options *flags.PageOptions) (*page.Layout, error) {
	if options.File != "" {
		return page.LoadLayout(options.File)
	}
	return page.BuiltinLayout(options.Layout)
}

func submitForm(doc *page.Document, formID string, in *input.Input, printer output.Printer, options *output.Options) error {
	form, _ := doc.Layout().Form(formID)
	fields, err := in.Resolve(form.BodyField)
	if err != nil {
		return err
	}
	data := page.NewFormData()
	for _, field := range fields {
		data.Append(field.Name, field.Value)
	}

	if err := doc.Submit(formID, data); err != nil {
		return err
	}
	doc.Wait()

	text, failed := doc.GetElementByID(form.Output).Snapshot()
	if options.PrintText {
		if err := printer.PrintText(text, failed); err != nil {
			return err
		}
	}
	if failed {
		return ErrSubmissionFailed
	}
	return nil
}

func observeExchange(client *exchange.Client, printer output.Printer, options *output.Options, logger *zap.Logger) {
	if options.PrintRequestHeader {
		client.OnRequest = func(r *http.Request) {
			if err := printRequestHeader(printer, r); err != nil {
				logger.Warn("printing request header failed", zap.Error(err))
			}
		}
	}
	if options.PrintResponseHeader {
		client.OnResponse = func(r *http.Response) {
			if err := printResponseHeader(printer, r); err != nil {
				logger.Warn("printing response header failed", zap.Error(err))
			}
		}
	}
}

func printRequestHeader(printer output.Printer, r *http.Request) error {
	if err := printer.PrintRequestLine(r); err != nil {
		return err
	}
	header := r.Header.Clone()
	header.Set("Host", r.Host)
	return printer.PrintHeader(header)
}

func printResponseHeader(printer output.Printer, r *http.Response) error {
	if err := printer.PrintStatusLine(r.Proto, r.Status, r.StatusCode); err != nil {
		return err
	}
	return printer.PrintHeader(r.Header)
}

// pageHandler shows the page a navigation lands on, or saves it.
func pageHandler(printer output.Printer, options *output.Options, progress io.Writer, logger *zap.Logger) exchange.PageHandler {
	return func(resp *http.Response) error {
		if options.Download {
			fileWriter := output.NewFileWriter(resp.Request.URL, options, progress)
			if err := fileWriter.Download(resp); err != nil {
				return err
			}
			logger.Debug("page saved", zap.String("path", fileWriter.Path()))
			return nil
		}
		if !options.PrintText {
			return nil
		}
		return printer.PrintBody(resp.Body, resp.Header.Get("Content-Type"))
	}
}
