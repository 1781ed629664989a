package flags

import (
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/nojima/httpform-go/exchange"
	"github.com/nojima/httpform-go/input"
	"github.com/nojima/httpform-go/output"
	"github.com/pborman/getopt"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

var reNumber = regexp.MustCompile(`^[0-9.]+$`)

type FlagSet interface {
	Args() []string
	PrintUsage(w io.Writer)
}

type PageOptions struct {
	// File is a YAML layout; it wins over Layout when set.
	File   string
	Layout string
}

type OptionSet struct {
	InputOptions    input.Options
	ExchangeOptions exchange.Options
	OutputOptions   output.Options
	PageOptions     PageOptions

	Verbose      bool
	Help         bool
	ShowVersion  bool
	ShowLicenses bool
}

// TerminalInfo describes the standard streams of the process.
type TerminalInfo struct {
	StdinIsTerminal  bool
	StdoutIsTerminal bool
	// StderrWidth is zero when stderr is not a terminal.
	StderrWidth int
}

func DetectTerminal() TerminalInfo {
	info := TerminalInfo{
		StdinIsTerminal:  isatty.IsTerminal(os.Stdin.Fd()),
		StdoutIsTerminal: isatty.IsTerminal(os.Stdout.Fd()),
	}
	fd := int(os.Stderr.Fd())
	if terminal.IsTerminal(fd) {
		if width, _, err := terminal.GetSize(fd); err == nil {
			info.StderrWidth = width
		}
	}
	return info
}

func Parse(args []string, term TerminalInfo) (FlagSet, *OptionSet, error) {
	inputOptions := input.Options{}
	exchangeOptions := exchange.Options{}
	outputOptions := output.Options{}
	pageOptions := PageOptions{Layout: "default"}
	optionSet := &OptionSet{}
	var ignoreStdin, noFollow bool
	printFlag := "\000" // "\000" is a special value that indicates user did not specified --print
	timeout := "30s"
	verifyFlag := "yes"

	flagSet := getopt.New()
	flagSet.SetParameters("ORIGIN TARGET [FIELD=VALUE [FIELD=VALUE ...]]")
	flagSet.StringVarLong(&pageOptions.Layout, "layout", 'l', "built-in page layout (default, single)")
	flagSet.StringVarLong(&pageOptions.File, "page", 0, "YAML file describing the page forms and buttons")
	flagSet.StringVarLong(&printFlag, "print", 'p', "specifies what the output should contain (Hhb)")
	flagSet.BoolVarLong(&ignoreStdin, "ignore-stdin", 0, "do not fill the body field from stdin")
	flagSet.StringVarLong(&timeout, "timeout", 0, "Timeout seconds that you allow each request to take")
	flagSet.BoolVarLong(&noFollow, "no-follow", 0, "do not follow redirects")
	flagSet.StringVarLong(&verifyFlag, "verify", 0, "verify TLS certificates (yes, no)")
	flagSet.BoolVarLong(&exchangeOptions.ForceHTTP1, "http1", 0, "force HTTP/1.1 over TLS")
	flagSet.BoolVarLong(&outputOptions.Download, "download", 'd', "save the page a button navigates to instead of printing it")
	flagSet.StringVarLong(&outputOptions.OutputFile, "output", 'o', "file to save the page to (implies --download)")
	flagSet.BoolVarLong(&outputOptions.Overwrite, "overwrite", 0, "overwrite the --download target if it exists")
	flagSet.BoolVarLong(&optionSet.Verbose, "verbose", 'v', "log every step to stderr")
	flagSet.BoolVarLong(&optionSet.Help, "help", 'h', "show this help")
	flagSet.BoolVarLong(&optionSet.ShowVersion, "version", 0, "print version and exit")
	flagSet.BoolVarLong(&optionSet.ShowLicenses, "licenses", 0, "print licenses of bundled modules and exit")
	if err := flagSet.Getopt(args, nil); err != nil {
		u := input.UsageError(err.Error())
		return flagSet, nil, errors.WithStack(&u)
	}

	// Check stdin
	if !ignoreStdin && !term.StdinIsTerminal {
		inputOptions.ReadStdin = true
	}

	// Parse --print
	if err := parsePrintFlag(printFlag, &outputOptions); err != nil {
		return flagSet, nil, err
	}

	// Parse --timeout
	d, err := parseDurationOrSeconds(timeout)
	if err != nil {
		return flagSet, nil, err
	}
	exchangeOptions.Timeout = d

	// Parse --verify
	verify, err := parseYesNo(verifyFlag)
	if err != nil {
		return flagSet, nil, err
	}
	exchangeOptions.SkipVerify = !verify
	exchangeOptions.FollowRedirects = !noFollow

	if outputOptions.OutputFile != "" {
		outputOptions.Download = true
	}

	// Color and progress
	outputOptions.EnableColor = term.StdoutIsTerminal
	outputOptions.ProgressWidth = term.StderrWidth

	optionSet.InputOptions = inputOptions
	optionSet.ExchangeOptions = exchangeOptions
	optionSet.OutputOptions = outputOptions
	optionSet.PageOptions = pageOptions
	return flagSet, optionSet, nil
}

func parsePrintFlag(printFlag string, outputOptions *output.Options) error {
	if printFlag == "\000" {
		// --print is not specified
		outputOptions.PrintText = true
		return nil
	}
	for _, c := range printFlag {
		switch c {
		case 'H':
			outputOptions.PrintRequestHeader = true
		case 'h':
			outputOptions.PrintResponseHeader = true
		case 'b':
			outputOptions.PrintText = true
		default:
			return errors.Errorf("Invalid char in --print value (must be consist of Hhb): %c", c)
		}
	}
	return nil
}

func parseDurationOrSeconds(timeout string) (time.Duration, error) {
	if reNumber.MatchString(timeout) {
		timeout += "s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return time.Duration(0), errors.Errorf("Value of --timeout must be a number or duration string: %v", timeout)
	}
	return d, nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	default:
		return false, errors.Errorf("Value of --verify must be yes or no: %s", s)
	}
}
