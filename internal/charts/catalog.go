package charts

import (
	"encoding/json"

	"filmdash/domain/film"
	"filmdash/internal"
	"filmdash/internal/analysis"
	"filmdash/internal/errors"
)

// Variant is one pre-built figure. It stores the encoded JSON so every
// reader gets its own copy.
type Variant struct {
	key     Key
	title   string
	encoded []byte
}

func (v *Variant) Key() Key {
	return v.key
}

func (v *Variant) Title() string {
	return v.title
}

// JSON returns a copy of the encoded figure
func (v *Variant) JSON() []byte {
	return append([]byte(nil), v.encoded...)
}

// Figure decodes a fresh copy of the figure
func (v *Variant) Figure() (Figure, error) {
	var fig Figure
	if err := json.Unmarshal(v.encoded, &fig); err != nil {
		return Figure{}, errors.Wrapf(err, "failed to decode variant %s", v.key)
	}
	return fig, nil
}

// Catalog is the fixed, read-only set of variants built at startup
type Catalog struct {
	order    []Key
	variants map[Key]*Variant
}

// Build constructs every declared variant. Options are validated first;
// after that construction is pure and panics only on empty inputs.
func Build(table *film.Table, genres, distributors []analysis.CategoryStat, opts Options) (*Catalog, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid chart options")
	}

	b := &builder{table: table, genres: genres, distributors: distributors, opts: opts}
	c := &Catalog{variants: make(map[Key]*Variant)}

	for _, plan := range groupPlans {
		for _, key := range plan.keys() {
			fig := plan.build(b, key)
			encoded, err := json.Marshal(fig)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to encode variant %s", key)
			}
			c.order = append(c.order, key)
			c.variants[key] = &Variant{key: key, title: fig.Layout.Title.Text, encoded: encoded}
			internal.DefaultLogger.Debug("[Charts] Built %s (%d bytes)", key, len(encoded))
		}
	}

	internal.DefaultLogger.Info("[Charts] Catalog ready with %d variants", len(c.order))
	return c, nil
}

// Lookup returns the variant for a key or an UNKNOWN_VARIANT error
func (c *Catalog) Lookup(k Key) (*Variant, error) {
	v, ok := c.variants[k]
	if !ok {
		return nil, errors.UnknownVariant(k.String())
	}
	return v, nil
}

// LookupString parses and looks up a stable key
func (c *Catalog) LookupString(s string) (*Variant, error) {
	k, err := ParseKey(s)
	if err != nil {
		return nil, err
	}
	return c.Lookup(k)
}

// Keys lists every key in build order
func (c *Catalog) Keys() []Key {
	return append([]Key(nil), c.order...)
}

// Groups lists each group once, in build order
func (c *Catalog) Groups() []Group {
	var out []Group
	seen := make(map[Group]bool)
	for _, k := range c.order {
		if !seen[k.Group] {
			seen[k.Group] = true
			out = append(out, k.Group)
		}
	}
	return out
}

// Len is the number of variants
func (c *Catalog) Len() int {
	return len(c.order)
}
