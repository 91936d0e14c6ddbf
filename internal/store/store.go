package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

// Store reads and writes the whole document through a Backend. It keeps no
// state between calls.
type Store struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Now() time.Time { return s.now() }

func (s *Store) NewID() string { return s.newID() }

func (s *Store) Logger() *zap.Logger { return s.logger }

// NewDocument returns the shape used when nothing has been stored yet.
func NewDocument() *model.Document {
	doc := &model.Document{SchemaVersion: CurrentSchemaVersion}
	fillEmpty(doc)
	return doc
}

// Load returns the current document. A missing document yields the default
// one without writing. When migration changes the stored bytes the result is
// written back once.
func (s *Store) Load() (*model.Document, error) {
	data, err := s.backend.Read()
	if errors.Is(err, ErrNotExist) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewDocument(), nil
	}

	doc, encoded, applied, err := s.migrate(data)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(encoded, data) {
		return doc, nil
	}
	if err := s.backend.Write(encoded); err != nil {
		return nil, fmt.Errorf("persist migrated document: %w", err)
	}
	if len(applied) > 0 {
		s.logger.Info("migrated data document",
			zap.Strings("steps", applied),
			zap.Int("schema_version", doc.SchemaVersion),
		)
	} else {
		s.logger.Debug("normalized data document encoding")
	}
	return doc, nil
}

func (s *Store) Save(doc *model.Document) error {
	encoded, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := s.backend.Write(encoded); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Update loads the document, applies fn and saves only when fn reports a
// change. Nothing is written when fn returns an error.
func (s *Store) Update(fn func(doc *model.Document) (bool, error)) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.Save(doc)
}

// Report describes what Load would do with the stored document.
type Report struct {
	Exists        bool
	StoredVersion int
	Pending       []string
	WouldWrite    bool
}

// Inspect runs the migration in memory and reports the outcome without
// writing anything.
func (s *Store) Inspect() (Report, error) {
	data, err := s.backend.Read()
	if errors.Is(err, ErrNotExist) {
		return Report{Pending: []string{}}, nil
	}
	if err != nil {
		return Report{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Report{Exists: true, Pending: []string{}}, nil
	}
	raw, err := decodeRaw(data)
	if err != nil {
		return Report{}, err
	}
	report := Report{Exists: true}
	if v, ok := raw["schema_version"].(float64); ok {
		report.StoredVersion = int(v)
	}

	_, encoded, applied, err := s.migrate(data)
	if err != nil {
		return Report{}, err
	}
	report.Pending = applied
	report.WouldWrite = !bytes.Equal(encoded, data)
	return report, nil
}

func (s *Store) migrate(data []byte) (*model.Document, []byte, []string, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, nil, nil, err
	}
	applied := Migrate(raw, s.now(), s.newID)

	migrated, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode migrated document: %w", err)
	}
	var doc model.Document
	if err := json.Unmarshal(migrated, &doc); err != nil {
		return nil, nil, nil, fmt.Errorf("decode document: %w", err)
	}
	encoded, err := encodeDocument(&doc)
	if err != nil {
		return nil, nil, nil, err
	}
	return &doc, encoded, applied, nil
}

func decodeRaw(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode document: top-level value is %T, want object", v)
	}
	return raw, nil
}

// EncodeDocument returns the canonical serialization of doc.
func EncodeDocument(doc *model.Document) ([]byte, error) {
	return encodeDocument(doc)
}

func encodeDocument(doc *model.Document) ([]byte, error) {
	fillEmpty(doc)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// fillEmpty replaces nil slices so collections always serialize as [].
func fillEmpty(doc *model.Document) {
	if doc.Diary == nil {
		doc.Diary = []model.DiaryEntry{}
	}
	for i := range doc.Diary {
		if doc.Diary[i].Micros == nil {
			doc.Diary[i].Micros = []model.MicroEntry{}
		}
	}
	if doc.Workouts == nil {
		doc.Workouts = []model.Workout{}
	}
	for i := range doc.Workouts {
		w := &doc.Workouts[i]
		if w.MuscleGroups == nil {
			w.MuscleGroups = []string{}
		}
		if w.Exercises == nil {
			w.Exercises = []model.Exercise{}
		}
		for j := range w.Exercises {
			if w.Exercises[j].Sets == nil {
				w.Exercises[j].Sets = []model.Set{}
			}
		}
	}
	if doc.CustomFoods == nil {
		doc.CustomFoods = []model.CustomFood{}
	}
	if doc.Micronutrients == nil {
		doc.Micronutrients = []model.MicroEntry{}
	}
}
