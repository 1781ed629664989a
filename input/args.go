package input

import (
	"io"
	"io/ioutil"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	reTarget    = regexp.MustCompile(`^[a-zA-Z][-_a-zA-Z0-9]*$`)
	reFieldName = regexp.MustCompile(`^[^=@\s]+$`)
	reScheme    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+-.]*://`)
)

type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

type parser struct {
	stdin         io.Reader
	readStdin     bool
	stdinConsumed bool
}

// ParseArgs parses `ORIGIN TARGET [FIELD=VALUE ...]`.
func ParseArgs(args []string, stdin io.Reader, options *Options) (*Input, error) {
	switch len(args) {
	case 0:
		return nil, newUsageError("ORIGIN is required")
	case 1:
		return nil, newUsageError("TARGET is required")
	}

	u, err := parseURL(args[0])
	if err != nil {
		return nil, err
	}
	target, err := parseTarget(args[1])
	if err != nil {
		return nil, err
	}

	in := Input{
		Origin: u,
		Target: target,
	}
	for _, arg := range args[2:] {
		field, err := parseItem(arg)
		if err != nil {
			return nil, err
		}
		in.Fields = append(in.Fields, field)
	}

	p := &parser{stdin: stdin, readStdin: options.ReadStdin}
	in.resolver = p
	return &in, nil
}

func parseTarget(s string) (string, error) {
	if !reTarget.MatchString(s) {
		return "", newUsageError("TARGET must be a form or button id: " + s)
	}
	return s, nil
}

// parseURL keeps only the origin of s. Form requests are always
// origin-relative, so any path or query on the command line is dropped.
func parseURL(s string) (*url.URL, error) {
	defaultScheme := "http"
	defaultHost := "localhost"

	// ex) :8081/hello or /hello
	if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "/") {
		s = defaultHost + s
	}

	// ex) example.com
	if !reScheme.MatchString(s) {
		s = defaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, newUsageError("Invalid URL: " + s)
	}
	host := strings.TrimSuffix(u.Host, ":")
	if host == "" {
		return nil, newUsageError("Invalid URL (missing host): " + s)
	}
	return &url.URL{
		Scheme: u.Scheme,
		User:   u.User,
		Host:   host,
		Path:   "/",
	}, nil
}

func parseItem(s string) (Field, error) {
	i := strings.Index(s, "=")
	if i <= 0 {
		return Field{}, errors.Errorf("unknown form item (expected FIELD=VALUE): %s", s)
	}
	name, value := s[:i], s[i+1:]
	if !reFieldName.MatchString(name) {
		return Field{}, errors.Errorf("invalid field name: %s", name)
	}
	return parseField(name, value), nil
}

func parseField(name, value string) Field {
	switch {
	case strings.HasPrefix(value, `\@`):
		return Field{Name: name, Value: value[1:]}
	case value == "@-":
		return Field{Name: name, IsStdin: true}
	case strings.HasPrefix(value, "@"):
		return Field{Name: name, Value: value[1:], IsFile: true}
	default:
		return Field{Name: name, Value: value}
	}
}

// Resolve returns the fields in command-line order with file and stdin
// references replaced by their contents. When implicitField is not empty,
// no item names it and stdin is piped, stdin becomes its value.
func (in *Input) Resolve(implicitField string) ([]Field, error) {
	p := in.resolver
	if p == nil {
		p = &parser{}
	}

	fields := make([]Field, 0, len(in.Fields)+1)
	for _, field := range in.Fields {
		value, err := p.resolveFieldValue(field)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: field.Name, Value: value})
	}

	if implicitField != "" && !in.Has(implicitField) && p.readStdin && !p.stdinConsumed {
		value, err := p.readAllStdin(implicitField)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: implicitField, Value: value})
	}
	return fields, nil
}

func (p *parser) resolveFieldValue(field Field) (string, error) {
	switch {
	case field.IsStdin:
		return p.readAllStdin(field.Name)
	case field.IsFile:
		data, err := ioutil.ReadFile(field.Value)
		if err != nil {
			return "", errors.Wrapf(err, "reading field value of '%s'", field.Name)
		}
		return string(data), nil
	default:
		return field.Value, nil
	}
}

func (p *parser) readAllStdin(name string) (string, error) {
	if p.stdinConsumed {
		return "", errors.Errorf("stdin was already consumed before reading '%s'", name)
	}
	if p.stdin == nil {
		return "", errors.Errorf("stdin is not available for '%s'", name)
	}
	b, err := ioutil.ReadAll(p.stdin)
	if err != nil {
		return "", errors.Wrapf(err, "reading stdin for '%s'", name)
	}
	p.stdinConsumed = true
	return string(b), nil
}
