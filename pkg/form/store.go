// Package form holds the field state of a mounted form and serializes every
// change to it.
package form

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

var (
	// ErrUnknownField is returned when a transition names a key the schema
	// does not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrNilStore guards against transitions on an uninitialised store.
	ErrNilStore = errors.New("form: store is nil")
)

// FieldValidator evaluates a single field against the whole form.
type FieldValidator interface {
	Validate(spec model.FieldSpec, raw string, snapshot validation.Values) validation.Result
}

// Proposal inspects the current snapshot and returns the value to write and
// whether the write should happen at all.
type Proposal func(current Snapshot) (value string, ok bool)

// Store owns the form state. It is the only writer: every mutation goes
// through one of its transitions, each of which runs under the store lock and
// recomputes Submittable before returning.
type Store struct {
	mu          sync.Mutex
	schema      model.FormSchema
	validator   FieldValidator
	fields      map[model.FieldKey]Field
	submittable bool
	version     uint64
	listeners   map[int]func(Snapshot)
	nextID      int
}

// NewStore seeds the store with the schema's initial values.
func NewStore(schema model.FormSchema, validator FieldValidator) (*Store, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if validator == nil {
		validator = validation.New()
	}
	s := &Store{
		schema:    schema,
		validator: validator,
		listeners: make(map[int]func(Snapshot)),
	}
	s.fields = s.initialFields()
	s.recompute()
	return s, nil
}

// Schema returns the schema the store was built from.
func (s *Store) Schema() model.FormSchema {
	return s.schema
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Change records a new raw value for key and re-validates it.
func (s *Store) Change(key model.FieldKey, value string) (Snapshot, error) {
	return s.transition(func() error {
		field, spec, err := s.lookup(key)
		if err != nil {
			return err
		}
		field.Value = value
		field.Touched = true
		field.Suggested = false
		s.fields[key] = s.evaluate(spec, field)
		return nil
	})
}

// Blur re-validates key after the user leaves the input.
func (s *Store) Blur(key model.FieldKey) (Snapshot, error) {
	return s.transition(func() error {
		field, spec, err := s.lookup(key)
		if err != nil {
			return err
		}
		field.Touched = true
		s.fields[key] = s.evaluate(spec, field)
		return nil
	})
}

// Propose performs a conditional write of key. The proposal sees the state at
// the moment the write is attempted, so preconditions are re-checked against
// live values rather than ones captured earlier. The written field is marked
// pending and re-validated within the same transition. The boolean reports
// whether the write happened.
func (s *Store) Propose(key model.FieldKey, proposal Proposal) (Snapshot, bool, error) {
	applied := false
	snap, err := s.transition(func() error {
		field, spec, err := s.lookup(key)
		if err != nil {
			return err
		}
		value, ok := proposal(s.snapshotLocked())
		if !ok {
			return errSkip
		}
		field.Value = value
		field.Status = StatusPending
		field.Touched = true
		field.Suggested = true
		s.fields[key] = s.evaluate(spec, field)
		applied = true
		return nil
	})
	if errors.Is(err, errSkip) {
		return snap, false, nil
	}
	return snap, applied, err
}

// ValidateAll touches every field so pending messages become visible.
func (s *Store) ValidateAll() Snapshot {
	snap, _ := s.transition(func() error {
		for _, spec := range s.schema.Fields {
			field := s.fields[spec.Key]
			field.Touched = true
			s.fields[spec.Key] = s.evaluate(spec, field)
		}
		return nil
	})
	return snap
}

// Reset restores every field to its initial value.
func (s *Store) Reset() Snapshot {
	snap, _ := s.transition(func() error {
		s.fields = s.initialFields()
		return nil
	})
	return snap
}

// Subscribe registers fn to run after every committed transition. Listeners
// run synchronously while the store is locked and must not call back into it.
// The returned function removes the listener.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

var errSkip = errors.New("form: proposal skipped")

func (s *Store) transition(apply func() error) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, ErrNilStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := apply(); err != nil {
		return s.snapshotLocked(), err
	}
	s.version++
	s.recompute()

	snap := s.snapshotLocked()
	for _, listener := range s.listeners {
		listener(snap)
	}
	return snap, nil
}

func (s *Store) lookup(key model.FieldKey) (Field, model.FieldSpec, error) {
	spec, ok := s.schema.Field(key)
	if !ok {
		return Field{}, model.FieldSpec{}, fmt.Errorf("%w %q", ErrUnknownField, key)
	}
	return s.fields[key], spec, nil
}

func (s *Store) evaluate(spec model.FieldSpec, field Field) Field {
	res := s.validator.Validate(spec, field.Value, s.valuesLocked(spec.Key, field.Value))
	if res.Valid {
		field.Status = StatusValid
		field.Message = ""
		return field
	}
	field.Status = StatusInvalid
	field.Message = ""
	if field.Touched {
		field.Message = res.Message
	}
	return field
}

// valuesLocked returns the current values with key overridden by value, the
// view a rule sees while key is being re-validated.
func (s *Store) valuesLocked(key model.FieldKey, value string) validation.Values {
	out := make(validation.Values, len(s.fields))
	for k, field := range s.fields {
		out[k] = field.Value
	}
	out[key] = value
	return out
}

func (s *Store) initialFields() map[model.FieldKey]Field {
	s.fields = make(map[model.FieldKey]Field, len(s.schema.Fields))
	for _, spec := range s.schema.Fields {
		s.fields[spec.Key] = Field{Key: spec.Key, Value: spec.Initial}
	}
	out := make(map[model.FieldKey]Field, len(s.schema.Fields))
	for _, spec := range s.schema.Fields {
		out[spec.Key] = s.evaluate(spec, s.fields[spec.Key])
	}
	return out
}

func (s *Store) recompute() {
	submittable := true
	for _, spec := range s.schema.Fields {
		if spec.Required && s.fields[spec.Key].Status != StatusValid {
			submittable = false
			break
		}
	}
	s.submittable = submittable
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Fields:      cloneFields(s.fields),
		Submittable: s.submittable,
		Version:     s.version,
	}
}
