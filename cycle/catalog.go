package cycle

import (
	"cmp"
	"fmt"
	"slices"
)

// =============================================================================
// SHIFT CODE CATALOG - Read-only lookup table
// =============================================================================

// Catalog maps shift codes to their definitions. It is built once from
// reference data and never modified, so it is safe to share between
// goroutines.
type Catalog struct {
	offCode string
	defs    map[string]ShiftCodeDefinition
}

// NewCatalog builds a catalog from definitions. Duplicate codes and
// definitions for the off sentinel are rejected.
func NewCatalog(defs ...ShiftCodeDefinition) (*Catalog, error) {
	return NewCatalogWithOffCode(OffCode, defs...)
}

// NewCatalogWithOffCode builds a catalog whose day-off sentinel is offCode.
func NewCatalogWithOffCode(offCode string, defs ...ShiftCodeDefinition) (*Catalog, error) {
	if offCode == "" {
		offCode = OffCode
	}
	c := &Catalog{offCode: offCode, defs: make(map[string]ShiftCodeDefinition, len(defs))}
	for _, d := range defs {
		if d.Code == "" {
			return nil, fmt.Errorf("shift code definition with empty code")
		}
		if d.Code == offCode {
			return nil, fmt.Errorf("shift code %q is reserved for days off", d.Code)
		}
		if _, dup := c.defs[d.Code]; dup {
			return nil, fmt.Errorf("duplicate shift code %q", d.Code)
		}
		c.defs[d.Code] = d
	}
	return c, nil
}

// MustCatalog is NewCatalog that panics on error. Use in tests and presets.
func MustCatalog(defs ...ShiftCodeDefinition) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// OffCode returns the day-off sentinel this catalog recognizes.
func (c *Catalog) OffCode() string { return c.offCode }

// Lookup resolves a code. The off sentinel yields KindOff, codes missing
// from the table yield KindUnrecognized; only KindWork carries a definition.
func (c *Catalog) Lookup(code string) (ShiftCodeDefinition, Kind) {
	if code == c.offCode {
		return ShiftCodeDefinition{}, KindOff
	}
	d, ok := c.defs[code]
	if !ok {
		return ShiftCodeDefinition{}, KindUnrecognized
	}
	return d, KindWork
}

// Len returns the number of defined codes.
func (c *Catalog) Len() int { return len(c.defs) }

// Definitions returns all definitions sorted by code.
func (c *Catalog) Definitions() []ShiftCodeDefinition {
	out := make([]ShiftCodeDefinition, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b ShiftCodeDefinition) int { return cmp.Compare(a.Code, b.Code) })
	return out
}
