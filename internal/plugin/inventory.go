package plugin

import "time"

// Record is one installed plugin and whatever metadata could be gathered
// about it. Records are immutable once built; the Inventory owns the slice.
type Record struct {
	// Name is the plugin's identifier exactly as it appears on disk.
	Name string `json:"name"`

	// Version is the plugin's version, when one could be determined.
	// Absent (nil) means the evaluator's VER predicate treats it as unknown.
	Version *Version `json:"version,omitempty"`

	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`

	// Size is the plugin file's size in bytes. Absent (nil) means the
	// evaluator's SIZE predicate treats it as unknown, distinguishing a
	// genuinely empty file from one whose size could not be determined.
	Size *int64 `json:"size,omitempty"`

	// ModTime is the plugin file's last-modified time, zero if unknown.
	ModTime time.Time `json:"modTime,omitempty"`
}

// Fold returns the record's case-insensitive identity key.
func (r Record) Fold() ID {
	return Fold(r.Name)
}

// Inventory is the ordered, immutable set of installed plugins that rules
// are evaluated against. Order is the user's current load order.
type Inventory struct {
	records []Record
	index   map[ID]int
}

// NewInventory builds an Inventory from records in load-order sequence.
// Later duplicates (by case-folded name) overwrite earlier ones in the
// lookup index but the positional slice keeps every entry, mirroring how a
// real plugin list may contain stray duplicate files a game engine itself
// would only load once.
func NewInventory(records []Record) *Inventory {
	inv := &Inventory{
		records: append([]Record(nil), records...),
		index:   make(map[ID]int, len(records)),
	}
	for i, r := range inv.records {
		inv.index[r.Fold()] = i
	}
	return inv
}

// Len returns the number of plugins in the inventory.
func (inv *Inventory) Len() int { return len(inv.records) }

// Records returns the inventory's plugins in load order. The returned slice
// must not be mutated by callers.
func (inv *Inventory) Records() []Record { return inv.records }

// Names returns just the identifiers, in load order.
func (inv *Inventory) Names() []string {
	names := make([]string, len(inv.records))
	for i, r := range inv.records {
		names[i] = r.Name
	}
	return names
}

// Has reports whether name (case-insensitive) is present in the inventory.
func (inv *Inventory) Has(name string) bool {
	_, ok := inv.index[Fold(name)]
	return ok
}

// Get returns the record for name (case-insensitive) and whether it exists.
func (inv *Inventory) Get(name string) (Record, bool) {
	i, ok := inv.index[Fold(name)]
	if !ok {
		return Record{}, false
	}
	return inv.records[i], true
}

// IndexOf returns the load-order position of name, or -1 if absent.
func (inv *Inventory) IndexOf(name string) int {
	i, ok := inv.index[Fold(name)]
	if !ok {
		return -1
	}
	return i
}
