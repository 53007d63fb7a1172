package roles

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrRoleUnavailable = errors.New("role assistant not configured")
)

// Definition describes one interview role. AssistantID empty means the role
// exists but must not be offered.
type Definition struct {
	ID          string   `mapstructure:"id" json:"id"`
	Title       string   `mapstructure:"title" json:"title"`
	Description string   `mapstructure:"description" json:"description"`
	Criteria    []string `mapstructure:"criteria" json:"criteria"`
	AssistantID string   `mapstructure:"assistant_id" json:"-"`
	Scenario    string   `mapstructure:"scenario" json:"-"`
}

// Info is the public view of an offered role.
type Info struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Registry is read-only after construction.
type Registry struct {
	order []string
	byID  map[string]Definition
}

func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{byID: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return nil, errors.New("role id must not be empty")
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate role id %q", d.ID)
		}
		d.AssistantID = strings.TrimSpace(d.AssistantID)
		d.Criteria = append([]string(nil), d.Criteria...)
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

// List returns offered roles in registration order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		d := r.byID[id]
		if d.AssistantID == "" {
			continue
		}
		out = append(out, Info{ID: d.ID, Title: d.Title, Description: d.Description})
	}
	return out
}

func (r *Registry) Resolve(id string) (Definition, error) {
	d, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownRole, id)
	}
	if d.AssistantID == "" {
		return Definition{}, fmt.Errorf("%w: %q", ErrRoleUnavailable, id)
	}
	d.Criteria = append([]string(nil), d.Criteria...)
	return d, nil
}

// Title maps a role key to its display title, falling back to the key itself.
func (r *Registry) Title(id string) string {
	if d, ok := r.byID[strings.TrimSpace(id)]; ok && d.Title != "" {
		return d.Title
	}
	return id
}

// Configured reports whether at least one role can be offered.
func (r *Registry) Configured() bool {
	return len(r.List()) > 0
}
