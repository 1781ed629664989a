package input

import "net/url"

// Input is a parsed command line: where to send events and which
// form or button on the page receives them.
type Input struct {
	Origin *url.URL
	Target string
	Fields []Field

	resolver *parser
}

type Options struct {
	ReadStdin bool
}

// Field is a single FIELD=VALUE item. When IsFile is set, Value is a
// path whose contents become the field value.
type Field struct {
	Name    string
	Value   string
	IsFile  bool
	IsStdin bool
}

// Has reports whether a field with the given name was supplied.
func (in *Input) Has(name string) bool {
	for _, field := range in.Fields {
		if field.Name == name {
			return true
		}
	}
	return false
}
