package backup

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/repository"
)

var (
	// ErrUnmappedReference indicates an element points at an id the backup never defined.
	ErrUnmappedReference = errors.New("unmapped backup reference")
	// ErrInvalidBackup indicates the document is not an assignment backup.
	ErrInvalidBackup = errors.New("invalid assignment backup")
)

// Element is one restored element: its attributes and leaf children, keyed by name.
type Element struct {
	Path string
	Data map[string]string
}

// String returns a leaf value, or "" when missing.
func (e Element) String(key string) string {
	return e.Data[key]
}

// Has reports whether the element carries key.
func (e Element) Has(key string) bool {
	_, ok := e.Data[key]
	return ok
}

// ID returns the old id of the element.
func (e Element) ID() uint {
	return e.Uint("id")
}

// Uint parses an unsigned leaf, returning 0 when missing or malformed.
func (e Element) Uint(key string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(e.Data[key]), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// Int parses a signed leaf, returning 0 when missing or malformed.
func (e Element) Int(key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(e.Data[key]))
	if err != nil {
		return 0
	}
	return v
}

// Bool reads "1" or "true" as true.
func (e Element) Bool(key string) bool {
	v := strings.TrimSpace(e.Data[key])
	return v == "1" || strings.EqualFold(v, "true")
}

// Float parses a decimal leaf; nil when missing.
func (e Element) Float(key string) *float64 {
	if !e.Has(key) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(e.Data[key]), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Time parses a unix timestamp leaf; nil when missing or zero.
func (e Element) Time(key string) *time.Time {
	v, err := strconv.ParseInt(strings.TrimSpace(e.Data[key]), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	t := time.Unix(v, 0).UTC()
	return &t
}

// Handler restores one element.
type Handler func(ctx context.Context, run *Run, el Element) error

// AfterHandler runs once the whole document has been read.
type AfterHandler func(ctx context.Context, run *Run) error

type relatedFiles struct {
	component string
	area      string
	mapping   string
}

// Run is the state of one restore: the transaction, the target course and the
// mapping table from old ids to new ids.
type Run struct {
	store    *repository.Store
	courseID uint
	parentID uint
	// oldContextID is the context of the backed up activity.
	oldContextID uint
	mappings     map[string]map[uint]uint
	related      []relatedFiles
	files        []Element
	logger       zerolog.Logger
}

// Store returns the transactional store of the run.
func (r *Run) Store() *repository.Store { return r.store }

// CourseID is the course the assignment is restored into.
func (r *Run) CourseID() uint { return r.courseID }

// NewParentID is the id of the restored assignment, 0 until it exists.
func (r *Run) NewParentID() uint { return r.parentID }

// SetMapping records that the item oldID was restored as newID.
func (r *Run) SetMapping(item string, oldID, newID uint) {
	if r.mappings[item] == nil {
		r.mappings[item] = map[uint]uint{}
	}
	r.mappings[item][oldID] = newID
}

// Mapping returns the new id of item oldID.
func (r *Run) Mapping(item string, oldID uint) (uint, error) {
	newID, ok := r.mappings[item][oldID]
	if !ok {
		return 0, fmt.Errorf("%w: %s %d", ErrUnmappedReference, item, oldID)
	}
	return newID, nil
}

// AddRelatedFiles restores the files of component/area, remapping their item id
// through mapping.
func (r *Run) AddRelatedFiles(component, area, mapping string) {
	for _, rel := range r.related {
		if rel.component == component && rel.area == area {
			return
		}
	}
	r.related = append(r.related, relatedFiles{component: component, area: area, mapping: mapping})
}

// Counts returns how many ids each mapping holds.
func (r *Run) Counts() map[string]int {
	out := make(map[string]int, len(r.mappings))
	for item, ids := range r.mappings {
		out[item] = len(ids)
	}
	return out
}

// Result describes a finished restore.
type Result struct {
	AssignmentID uint
	Mapped       map[string]int
}

// Restorer reads backup documents and dispatches their elements by path.
type Restorer struct {
	store    *repository.Store
	handlers map[string]Handler
	after    []AfterHandler
	logger   zerolog.Logger
}

// NewRestorer builds a restorer with the assignment, onlinetext, comments and file
// handlers registered.
func NewRestorer(store *repository.Store, logger zerolog.Logger) *Restorer {
	r := &Restorer{
		store:    store,
		handlers: map[string]Handler{},
		logger:   logger.With().Str("component", "backup_restore").Logger(),
	}
	registerAssign(r)
	registerOnlineText(r)
	registerComments(r)
	return r
}

// OnElement registers the handler of path.
func (r *Restorer) OnElement(path string, handler Handler) {
	r.handlers[path] = handler
}

// After registers a step that runs after the document has been read.
func (r *Restorer) After(step AfterHandler) {
	r.after = append(r.after, step)
}

// Restore reads a backup document and recreates the assignment inside courseID.
// The restore is atomic.
func (r *Restorer) Restore(ctx context.Context, courseID uint, reader io.Reader) (Result, error) {
	var result Result
	err := r.store.WithTx(ctx, func(tx *repository.Store) error {
		run := &Run{
			store:    tx,
			courseID: courseID,
			mappings: map[string]map[uint]uint{},
			logger:   r.logger,
		}
		if err := r.walk(ctx, run, reader); err != nil {
			return err
		}
		if run.parentID == 0 {
			return fmt.Errorf("%w: no assign element", ErrInvalidBackup)
		}
		for _, step := range r.after {
			if err := step(ctx, run); err != nil {
				return err
			}
		}
		result = Result{AssignmentID: run.parentID, Mapped: run.Counts()}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	r.logger.Info().Uint("assignment_id", result.AssignmentID).Uint("course_id", courseID).Msg("assignment restored")
	return result, nil
}

type frame struct {
	name       string
	path       string
	data       map[string]string
	text       strings.Builder
	children   bool
	dispatched bool
}

// walk streams the document. Leaf elements become values of their parent; a
// registered element is dispatched before its first registered descendant, or at
// its end.
func (r *Restorer) walk(ctx context.Context, run *Run, reader io.Reader) error {
	decoder := xml.NewDecoder(reader)
	var stack []*frame

	dispatch := func(f *frame) error {
		if f.dispatched {
			return nil
		}
		f.dispatched = true
		handler, ok := r.handlers[f.path]
		if !ok {
			return nil
		}
		return handler(ctx, run, Element{Path: f.path, Data: f.data})
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			parentPath := ""
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = true
				parentPath = parent.path
			} else if t.Name.Local != strings.TrimPrefix(PathActivity, "/") {
				return fmt.Errorf("%w: root element %q", ErrInvalidBackup, t.Name.Local)
			}

			f := &frame{name: t.Name.Local, path: parentPath + "/" + t.Name.Local, data: map[string]string{}}
			for _, attr := range t.Attr {
				f.data[attr.Name.Local] = attr.Value
			}

			if _, ok := r.handlers[f.path]; ok {
				for _, ancestor := range stack {
					if err := dispatch(ancestor); err != nil {
						return err
					}
				}
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			_, registered := r.handlers[f.path]
			switch {
			case registered:
				if err := dispatch(f); err != nil {
					return err
				}
			case !f.children && len(stack) > 0:
				stack[len(stack)-1].data[f.name] = f.text.String()
			}
		}
	}
	return nil
}
