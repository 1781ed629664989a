package page

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Location is the page's address bar. Replace performs a full navigation
// to path, discarding the current page.
type Location interface {
	Replace(ctx context.Context, path string) error
}

// SubmitEvent carries the values of the submitted form.
type SubmitEvent struct {
	FormID string
	Data   *FormData
}

type ClickEvent struct {
	ButtonID string
}

type SubmitListener func(ctx context.Context, event *SubmitEvent)

type ClickListener func(ctx context.Context, event *ClickEvent)

// LoadListener runs once when the page has loaded; it wires the page's
// event listeners.
type LoadListener func(ctx context.Context, doc *Document) error

// Document is the explicit page reference handed to every handler. Events
// are dispatched asynchronously, one goroutine per listener invocation,
// and are neither serialized nor cancelled by later events.
type Document struct {
	layout   *Layout
	location Location
	elements map[string]*Element

	mu              sync.Mutex
	ctx             context.Context
	loaded          bool
	loadListeners   []LoadListener
	submitListeners map[string][]SubmitListener
	clickListeners  map[string][]ClickListener

	inflight sync.WaitGroup
}

// New builds a document with one output element per distinct form output.
func New(layout *Layout, location Location) *Document {
	doc := &Document{
		layout:          layout,
		location:        location,
		elements:        map[string]*Element{},
		submitListeners: map[string][]SubmitListener{},
		clickListeners:  map[string][]ClickListener{},
	}
	for _, form := range layout.Forms {
		if _, ok := doc.elements[form.Output]; !ok {
			doc.elements[form.Output] = newElement(form.Output)
		}
	}
	return doc
}

func (d *Document) Layout() *Layout {
	return d.layout
}

func (d *Document) Location() Location {
	return d.location
}

// GetElementByID returns nil when no element has the id.
func (d *Document) GetElementByID(id string) *Element {
	return d.elements[id]
}

func (d *Document) OnLoad(listener LoadListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadListeners = append(d.loadListeners, listener)
}

// Load runs the load listeners in registration order. Events dispatched
// afterwards run under ctx. Loading twice is an error.
func (d *Document) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.loaded {
		d.mu.Unlock()
		return errors.New("document is already loaded")
	}
	d.loaded = true
	d.ctx = ctx
	listeners := append([]LoadListener(nil), d.loadListeners...)
	d.mu.Unlock()

	for _, listener := range listeners {
		if err := listener(ctx, d); err != nil {
			return errors.Wrap(err, "initializing page")
		}
	}
	return nil
}

func (d *Document) AddSubmitListener(formID string, listener SubmitListener) error {
	if _, ok := d.layout.Form(formID); !ok {
		return errors.Errorf("no form with id '%s'", formID)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitListeners[formID] = append(d.submitListeners[formID], listener)
	return nil
}

func (d *Document) AddClickListener(buttonID string, listener ClickListener) error {
	if !d.hasButton(buttonID) {
		return errors.Errorf("no button with id '%s'", buttonID)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clickListeners[buttonID] = append(d.clickListeners[buttonID], listener)
	return nil
}

// Submit dispatches a submit event for the form and returns without
// waiting for the listeners.
func (d *Document) Submit(formID string, data *FormData) error {
	if _, ok := d.layout.Form(formID); !ok {
		return errors.Errorf("no form with id '%s'", formID)
	}
	ctx, err := d.eventContext()
	if err != nil {
		return err
	}

	d.mu.Lock()
	listeners := append([]SubmitListener(nil), d.submitListeners[formID]...)
	d.mu.Unlock()

	event := &SubmitEvent{FormID: formID, Data: data}
	for _, listener := range listeners {
		listener := listener
		d.inflight.Add(1)
		go func() {
			defer d.inflight.Done()
			listener(ctx, event)
		}()
	}
	return nil
}

// Click dispatches a click event for the button and returns without
// waiting for the listeners.
func (d *Document) Click(buttonID string) error {
	if !d.hasButton(buttonID) {
		return errors.Errorf("no button with id '%s'", buttonID)
	}
	ctx, err := d.eventContext()
	if err != nil {
		return err
	}

	d.mu.Lock()
	listeners := append([]ClickListener(nil), d.clickListeners[buttonID]...)
	d.mu.Unlock()

	event := &ClickEvent{ButtonID: buttonID}
	for _, listener := range listeners {
		listener := listener
		d.inflight.Add(1)
		go func() {
			defer d.inflight.Done()
			listener(ctx, event)
		}()
	}
	return nil
}

// Wait blocks until every dispatched listener has returned.
func (d *Document) Wait() {
	d.inflight.Wait()
}

func (d *Document) eventContext() (context.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded {
		return nil, errors.New("document is not loaded yet")
	}
	return d.ctx, nil
}

func (d *Document) hasButton(id string) bool {
	for _, button := range d.layout.Buttons {
		if button.ID == id {
			return true
		}
	}
	return false
}
