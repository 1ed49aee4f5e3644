// Package intake turns raw JSON payloads into typed calculator inputs. It
// checks required keys, applies request-time defaults and runs the
// calculator through an engine.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rentscore/rentscore/internal/dispatch"
	"github.com/rentscore/rentscore/pkg/scoring"
)

// ErrUnknownCalculator is returned for names not in the registry.
var ErrUnknownCalculator = eris.New("unknown calculator")

// Defaults are the values filled in at the request boundary.
type Defaults struct {
	// Now supplies the request time for month and current_year.
	Now func() time.Time
	// CollectionRate is used when historical_collection_rate is absent.
	CollectionRate float64
}

func (d Defaults) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// Calculator describes one registered calculator.
type Calculator struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    []string `json:"required"`
	// AcceptsRoster marks calculators whose tenants can come from a roster.
	AcceptsRoster bool `json:"accepts_roster"`

	nested map[string][]string
	run    func(ctx context.Context, e dispatch.Engine, p payload, d Defaults) (any, error)
}

// payload is a decoded JSON object keyed by field.
type payload map[string]json.RawMessage

func (p payload) has(key string) bool {
	v, ok := p[key]
	return ok && !isNull(v)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Registry holds the calculators by name.
type Registry struct {
	calcs    map[string]Calculator
	defaults Defaults
}

// NewRegistry creates a registry with every calculator registered.
func NewRegistry(d Defaults) *Registry {
	if d.CollectionRate == 0 {
		d.CollectionRate = scoring.DefaultCollectionRate
	}
	r := &Registry{calcs: make(map[string]Calculator), defaults: d}
	for _, c := range calculators() {
		r.calcs[c.Name] = c
	}
	return r
}

// Lookup returns the calculator registered under name.
func (r *Registry) Lookup(name string) (Calculator, bool) {
	c, ok := r.calcs[name]
	return c, ok
}

// Calculators returns every registered calculator sorted by name.
func (r *Registry) Calculators() []Calculator {
	out := make([]Calculator, 0, len(r.calcs))
	for _, c := range r.calcs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run validates body against the named calculator's contract and executes it.
func (r *Registry) Run(ctx context.Context, e dispatch.Engine, name string, body []byte) (any, error) {
	c, ok := r.calcs[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownCalculator, "%q", name)
	}
	p, err := parseObject(body)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, e, c, p)
}

// RunWithTenants runs a roster-capable calculator with tenants supplied by
// the caller instead of the request body.
func (r *Registry) RunWithTenants(ctx context.Context, e dispatch.Engine, name string, body []byte, tenants []scoring.TenantRiskInput) (any, error) {
	c, ok := r.calcs[name]
	if !ok || !c.AcceptsRoster {
		return nil, eris.Wrapf(ErrUnknownCalculator, "%q does not accept a roster", name)
	}
	p := payload{}
	if len(bytes.TrimSpace(body)) > 0 {
		var err error
		if p, err = parseObject(body); err != nil {
			return nil, err
		}
	}
	raw, err := json.Marshal(tenants)
	if err != nil {
		return nil, eris.Wrap(err, "marshal roster tenants")
	}
	p["tenants"] = raw
	return r.run(ctx, e, c, p)
}

func (r *Registry) run(ctx context.Context, e dispatch.Engine, c Calculator, p payload) (any, error) {
	if err := checkRequired(c, p); err != nil {
		return nil, err
	}
	return c.run(ctx, e, p, r.defaults)
}

func parseObject(body []byte) (payload, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return nil, scoring.InvalidField("body", "must be a JSON object")
	}
	return p, nil
}

func checkRequired(c Calculator, p payload) error {
	for _, field := range c.Required {
		if !p.has(field) {
			return scoring.InvalidField(field, "is required")
		}
	}
	for field, required := range c.nested {
		if !p.has(field) {
			continue
		}
		var items []payload
		if err := json.Unmarshal(p[field], &items); err != nil {
			return scoring.InvalidField(field, "must be an array of objects")
		}
		if len(items) == 0 {
			return scoring.InvalidField(field, "must not be empty")
		}
		for i, item := range items {
			if item == nil {
				return scoring.InvalidField(fmt.Sprintf("%s[%d]", field, i), "must be an object")
			}
			for _, key := range required {
				if !item.has(key) {
					return scoring.InvalidField(fmt.Sprintf("%s[%d].%s", field, i, key), "is required")
				}
			}
		}
	}
	return nil
}

// decode unmarshals p into a typed input, naming the field on type errors.
func decode[T any](p payload) (T, error) {
	var out T
	raw, err := json.Marshal(p)
	if err != nil {
		return out, eris.Wrap(err, "re-encode payload")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, scoring.InvalidField(typeErr.Field, "must be of type %s", typeErr.Type)
		}
		return out, scoring.InvalidField("body", "is malformed: %v", err)
	}
	return out, nil
}
