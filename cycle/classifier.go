package cycle

// =============================================================================
// SHIFT CLASSIFIER - Comparison-relevant facts for one code
// =============================================================================

// Kind is the terminal outcome of resolving a shift code.
type Kind int

const (
	KindWork Kind = iota
	KindOff
	KindUnrecognized
)

func (k Kind) String() string {
	switch k {
	case KindWork:
		return "work"
	case KindOff:
		return "off"
	case KindUnrecognized:
		return "unrecognized"
	default:
		return "invalid"
	}
}

// Classification is what the comparison and statistics code needs to know
// about a single day's code.
type Classification struct {
	Code       string
	Kind       Kind
	Definition ShiftCodeDefinition // zero unless Kind == KindWork
}

// IsWork reports whether the day counts as a work day. Unrecognized codes
// do not.
func (c Classification) IsWork() bool { return c.Kind == KindWork }

// IsOff reports whether the code is the day-off sentinel.
func (c Classification) IsOff() bool { return c.Kind == KindOff }

// IsUnrecognized reports whether the code is missing from the catalog.
func (c Classification) IsUnrecognized() bool { return c.Kind == KindUnrecognized }

// Category returns the shift category for work days and "" otherwise.
func (c Classification) Category() Category {
	if c.Kind != KindWork {
		return ""
	}
	return c.Definition.Category
}

// Window returns the shift's time window, or nil when there is none to
// compare.
func (c Classification) Window() *TimeWindow {
	if c.Kind != KindWork {
		return nil
	}
	w := c.Definition.Window()
	return &w
}

// Classifier derives Classifications from a catalog. Categories always come
// from the catalog; codes it lacks are reported as unrecognized, never
// inferred from their spelling or start time.
type Classifier struct {
	Catalog *Catalog
}

// NewClassifier creates a classifier over catalog.
func NewClassifier(catalog *Catalog) Classifier {
	return Classifier{Catalog: catalog}
}

// Classify resolves a single code.
func (cl Classifier) Classify(code string) Classification {
	def, kind := cl.Catalog.Lookup(code)
	return Classification{Code: code, Kind: kind, Definition: def}
}
