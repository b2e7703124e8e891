package product

import (
	"encoding/json"
	"fmt"

	"github.com/wichananm65/digital-store-backend/internal/apperr"
)

// ChangeKind tags what a reconciliation entry does to an owned row.
type ChangeKind int

const (
	ChangeCreate ChangeKind = iota
	ChangeUpdate
	ChangeDelete
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreate:
		return "create"
	case ChangeUpdate:
		return "update"
	case ChangeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is one item of a nested collection update. ID is set for updates and
// deletes. Value carries the new row for creates; for updates only the columns
// named in Fields are written, so an empty string clears a column.
type Change[T any] struct {
	Kind   ChangeKind
	ID     uint
	Value  T
	Fields []string
}

type childInput interface {
	ref() (id *uint, deleted bool)
}

func (in ImageInput) ref() (*uint, bool)  { return in.ID, in.Deleted }
func (in OptionInput) ref() (*uint, bool) { return in.ID, in.Deleted }

// PlanImages turns incoming image entries into changes: flagged entries are
// deletes, entries with an id are updates and the rest are creates.
func PlanImages(items []ImageInput) ([]Change[Image], error) {
	return plan("images", items, imageValue)
}

func PlanOptions(items []OptionInput) ([]Change[Option], error) {
	return plan("options", items, optionValue)
}

func plan[In childInput, T any](label string, items []In, value func(In, bool) (T, []string, error)) ([]Change[T], error) {
	out := make([]Change[T], 0, len(items))
	for i, item := range items {
		id, deleted := item.ref()
		if id != nil && *id == 0 {
			return nil, apperr.Validation(fmt.Sprintf("%s[%d]: invalid id", label, i))
		}

		if deleted {
			if id == nil {
				return nil, apperr.Validation(fmt.Sprintf("%s[%d]: id is required to delete", label, i))
			}
			out = append(out, Change[T]{Kind: ChangeDelete, ID: *id})
			continue
		}

		creating := id == nil
		v, fields, err := value(item, creating)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("%s[%d]: %s", label, i, err))
		}
		if creating {
			out = append(out, Change[T]{Kind: ChangeCreate, Value: v})
		} else {
			out = append(out, Change[T]{Kind: ChangeUpdate, ID: *id, Value: v, Fields: fields})
		}
	}
	return out, nil
}

func imageValue(in ImageInput, creating bool) (Image, []string, error) {
	var (
		img    Image
		fields []string
	)
	if in.Type != nil {
		img.Type = *in.Type
		fields = append(fields, "type")
	}
	if in.Content != nil {
		img.Content = *in.Content
		fields = append(fields, "content")
	}
	if creating && img.Content == "" {
		return Image{}, nil, fmt.Errorf("content is required")
	}
	if !creating && in.Content != nil && img.Content == "" {
		return Image{}, nil, fmt.Errorf("content cannot be empty")
	}
	if !creating && len(fields) == 0 {
		return Image{}, nil, fmt.Errorf("nothing to update")
	}
	return img, fields, nil
}

func optionValue(in OptionInput, creating bool) (Option, []string, error) {
	var (
		o      Option
		fields []string
	)
	if in.Title != nil {
		o.Title = *in.Title
		fields = append(fields, "title")
	}
	if in.Shape != nil {
		o.Shape = *in.Shape
		fields = append(fields, "shape")
	}
	if in.Type != nil {
		o.Type = *in.Type
		fields = append(fields, "type")
	}
	if raw := in.values(); !isAbsent(raw) {
		values, err := json.Marshal(raw)
		if err != nil {
			return Option{}, nil, fmt.Errorf("values are not valid JSON")
		}
		o.Values = string(values)
		fields = append(fields, "values")
	}
	if creating && o.Values == "" {
		return Option{}, nil, fmt.Errorf("values is required")
	}
	if !creating && len(fields) == 0 {
		return Option{}, nil, fmt.Errorf("nothing to update")
	}
	return o, fields, nil
}

// creates unwraps a plan that may only add rows, as on product creation.
func creates[T any](label string, changes []Change[T]) ([]T, error) {
	out := make([]T, 0, len(changes))
	for i, ch := range changes {
		if ch.Kind != ChangeCreate {
			return nil, apperr.Validation(fmt.Sprintf("%s[%d]: cannot %s on create", label, i, ch.Kind))
		}
		out = append(out, ch.Value)
	}
	return out, nil
}
