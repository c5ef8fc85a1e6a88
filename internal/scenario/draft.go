package scenario

import (
	"strconv"

	"github.com/theirongolddev/runway/internal/forecast"
)

// Draft collects text edits to input fields until they are submitted.
type Draft struct {
	fields map[forecast.Field]string
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{fields: make(map[forecast.Field]string)}
}

// Set records raw text for a field, replacing any earlier edit.
func (d *Draft) Set(f forecast.Field, raw string) {
	d.fields[f] = raw
}

// Value returns the pending text for f, or the formatted base value when f
// has not been edited.
func (d *Draft) Value(f forecast.Field, base forecast.Input) string {
	if raw, ok := d.fields[f]; ok {
		return raw
	}
	if f == forecast.FieldHorizon {
		return strconv.Itoa(base.HorizonMonths)
	}
	return strconv.FormatFloat(base.Get(f), 'f', -1, 64)
}

// Dirty reports whether any field has a pending edit.
func (d *Draft) Dirty() bool {
	return len(d.fields) > 0
}

// Edited reports whether f has a pending edit.
func (d *Draft) Edited(f forecast.Field) bool {
	_, ok := d.fields[f]
	return ok
}

// Reset discards all pending edits.
func (d *Draft) Reset() {
	clear(d.fields)
}

// Resolve parses the pending edits over base.
func (d *Draft) Resolve(base forecast.Input, mode forecast.ParseMode) (forecast.Input, error) {
	return forecast.ParseInput(d.fields, base, mode)
}

// SubmitTo resolves the draft against the controller's current input and
// submits it. The draft is cleared only when the submit succeeds.
func (d *Draft) SubmitTo(c *Controller, mode forecast.ParseMode) (*Snapshot, error) {
	in, err := d.Resolve(c.Current().Input, mode)
	if err != nil {
		return nil, err
	}
	s, err := c.Submit(in)
	if err != nil {
		return nil, err
	}
	d.Reset()
	return s, nil
}
