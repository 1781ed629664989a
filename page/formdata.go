package page

// FormData is the ordered set of name/value pairs a form submits.
// A name may appear more than once; Get returns the first value.
type FormData struct {
	entries []entry
}

type entry struct {
	name  string
	value string
}

func NewFormData() *FormData {
	return &FormData{}
}

func (d *FormData) Append(name, value string) {
	d.entries = append(d.entries, entry{name: name, value: value})
}

// Get returns the first value for name. A missing field reads as empty.
func (d *FormData) Get(name string) string {
	value, _ := d.Lookup(name)
	return value
}

func (d *FormData) Lookup(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, e := range d.entries {
		if e.name == name {
			return e.value, true
		}
	}
	return "", false
}

func (d *FormData) GetAll(name string) []string {
	if d == nil {
		return nil
	}
	var values []string
	for _, e := range d.entries {
		if e.name == name {
			values = append(values, e.value)
		}
	}
	return values
}

func (d *FormData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
