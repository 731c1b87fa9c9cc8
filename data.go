package spider

import "github.com/chalkan3-sloth/spider-go/internal/core"

// Data is a storable blob with locality hints, wrapping internal/core's
// Data (spec.md §3, grounded on client/data.py's Data).
type Data struct {
	impl *core.Data
}

// NewData constructs an unpersisted Data value around value. Call
// Driver.CreateData to persist it. TaskContext.CreateData does not take
// a Data value; it builds and persists its own from raw bytes.
func NewData(value []byte) *Data {
	return &Data{impl: &core.Data{DataID: core.NewId(), Value: value}}
}

func dataFromImpl(impl *core.Data) *Data {
	return &Data{impl: impl}
}

// Value returns the data's bytes.
func (d *Data) Value() []byte {
	return d.impl.Value
}

// HardLocality reports whether the data is pinned to its localities.
func (d *Data) HardLocality() bool {
	return d.impl.HardLocality
}

// SetHardLocality sets the hard-locality flag.
func (d *Data) SetHardLocality(v bool) {
	d.impl.HardLocality = v
}

// GetLocalities returns the data's current locality addresses.
func (d *Data) GetLocalities() []string {
	locs := d.impl.GetLocalities()
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Address
	}
	return out
}

// AddLocality appends a new locality hint.
func (d *Data) AddLocality(address string) {
	d.impl.AddLocality(address)
}
