package page

import (
	"embed"
	"fmt"
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed layouts/*.yaml
var builtinLayouts embed.FS

var (
	reID     = regexp.MustCompile(`^[a-zA-Z][-_a-zA-Z0-9]*$`)
	reMethod = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// Layout describes the forms and buttons of a page.
type Layout struct {
	Name    string       `yaml:"name,omitempty" default:"custom"`
	Forms   []FormSpec   `yaml:"forms,omitempty"`
	Buttons []ButtonSpec `yaml:"buttons,omitempty"`
}

// FormSpec declares a form and the request its submit handler sends.
// An empty BodyField means the request carries no payload.
type FormSpec struct {
	ID            string `yaml:"id"`
	Method        string `yaml:"method,omitempty" default:"POST"`
	FilenameField string `yaml:"filenameField,omitempty" default:"filename"`
	BodyField     string `yaml:"bodyField,omitempty"`
	ContentType   string `yaml:"contentType,omitempty"`
	Output        string `yaml:"output,omitempty" default:"response"`
	ErrorMessage  string `yaml:"errorMessage,omitempty"`
}

// ButtonSpec declares a button that navigates to Href when clicked.
type ButtonSpec struct {
	ID   string `yaml:"id"`
	Href string `yaml:"href"`
}

// BuiltinLayout returns one of the layouts shipped with the binary
// ("default" or "single").
func BuiltinLayout(name string) (*Layout, error) {
	data, err := builtinLayouts.ReadFile("layouts/" + name + ".yaml")
	if err != nil {
		return nil, errors.Errorf("unknown layout: %s", name)
	}
	return ParseLayout(data)
}

// DefaultLayout is the two-form page: upload, delete and browse.
func DefaultLayout() *Layout {
	layout, err := BuiltinLayout("default")
	if err != nil {
		panic(err)
	}
	return layout
}

// LoadLayout reads a YAML layout from path.
func LoadLayout(path string) (*Layout, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading layout file %s", path)
	}
	layout, err := ParseLayout(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading layout file %s", path)
	}
	return layout, nil
}

// ParseLayout decodes a YAML layout, fills defaults and validates it.
func ParseLayout(data []byte) (*Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, errors.Wrap(err, "parsing layout")
	}
	if err := layout.setDefaults(); err != nil {
		return nil, err
	}
	if err := layout.validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

func (l *Layout) setDefaults() error {
	if err := defaults.Set(l); err != nil {
		return errors.Wrap(err, "setting layout defaults")
	}
	for i := range l.Forms {
		form := &l.Forms[i]
		if err := defaults.Set(form); err != nil {
			return errors.Wrapf(err, "setting defaults of form '%s'", form.ID)
		}
		form.Method = strings.ToUpper(form.Method)
		if form.ErrorMessage == "" {
			form.ErrorMessage = "Error sending " + form.Method
		}
	}
	return nil
}

func (l *Layout) validate() error {
	ids := map[string]string{}
	claim := func(id, kind string) error {
		if !reID.MatchString(id) {
			return errors.Errorf("invalid %s id: '%s'", kind, id)
		}
		if other, ok := ids[id]; ok {
			return errors.Errorf("duplicate id '%s' (%s and %s)", id, other, kind)
		}
		ids[id] = kind
		return nil
	}

	for _, form := range l.Forms {
		if err := claim(form.ID, "form"); err != nil {
			return err
		}
		if !reMethod.MatchString(form.Method) {
			return errors.Errorf("form '%s': method must consist of alphabets: %s", form.ID, form.Method)
		}
	}
	for _, button := range l.Buttons {
		if err := claim(button.ID, "button"); err != nil {
			return err
		}
		if !strings.HasPrefix(button.Href, "/") {
			return errors.Errorf("button '%s': href must be an absolute path: '%s'", button.ID, button.Href)
		}
	}
	// Two forms may share an output element, but an output id must not
	// collide with a form or button id.
	for _, form := range l.Forms {
		if !reID.MatchString(form.Output) {
			return errors.Errorf("form '%s': invalid output id: '%s'", form.ID, form.Output)
		}
		if kind, ok := ids[form.Output]; ok {
			return errors.Errorf("form '%s': output '%s' is already a %s", form.ID, form.Output, kind)
		}
	}
	return nil
}

// TargetKind tells whether a resolved target is a form or a button.
type TargetKind int

const (
	FormTarget TargetKind = iota + 1
	ButtonTarget
)

// Resolve maps a command-line target to a form or button id. Exact ids
// win; otherwise a method name (case-insensitive) selects the first form
// sending that method and "browse" selects the first button.
func (l *Layout) Resolve(target string) (TargetKind, string, error) {
	for _, form := range l.Forms {
		if form.ID == target {
			return FormTarget, form.ID, nil
		}
	}
	for _, button := range l.Buttons {
		if button.ID == target {
			return ButtonTarget, button.ID, nil
		}
	}
	for _, form := range l.Forms {
		if strings.EqualFold(form.Method, target) {
			return FormTarget, form.ID, nil
		}
	}
	if strings.EqualFold(target, "browse") && len(l.Buttons) > 0 {
		return ButtonTarget, l.Buttons[0].ID, nil
	}
	return 0, "", errors.Errorf("no form or button matches '%s' (available: %s)", target, l.describeTargets())
}

// Form returns the declaration of the form with the given id.
func (l *Layout) Form(id string) (FormSpec, bool) {
	for _, form := range l.Forms {
		if form.ID == id {
			return form, true
		}
	}
	return FormSpec{}, false
}

func (l *Layout) describeTargets() string {
	var names []string
	for _, form := range l.Forms {
		names = append(names, fmt.Sprintf("%s (%s)", form.ID, strings.ToLower(form.Method)))
	}
	for _, button := range l.Buttons {
		names = append(names, fmt.Sprintf("%s (browse)", button.ID))
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
