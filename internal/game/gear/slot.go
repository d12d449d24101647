package gear

import "fmt"

// SlotKind classifies a loadout slot.
type SlotKind int

const (
	// SlotOpen accepts set and clear freely.
	SlotOpen SlotKind = iota
	// SlotFixed is write-once: mutation after the first Set is a programming error.
	SlotFixed
	// SlotPenalty is write-once like SlotFixed but holds a penalty symbol.
	SlotPenalty
)

// String returns a human-readable slot kind label.
func (k SlotKind) String() string {
	switch k {
	case SlotFixed:
		return "fixed"
	case SlotPenalty:
		return "penalty"
	default:
		return "open"
	}
}

// Slot holds at most one Symbol at a fixed position in a loadout.
// Invariant: Fixed and Penalty slots never change content after their first
// Set; any later Set or Clear panics rather than silently corrupting a
// loadout built from catalog data.
type Slot struct {
	// Index is the slot's position within its loadout. Unique, >= 0.
	Index int
	// Kind controls the slot's mutation contract.
	Kind SlotKind

	symbolRef *Symbol
	written   bool
}

// NewSlot constructs an empty slot.
//
// Precondition: index >= 0.
// Postcondition: Returns an empty slot or a validation error.
func NewSlot(index int, kind SlotKind) (*Slot, error) {
	if index < 0 {
		return nil, fmt.Errorf("gear: slot index must be >= 0, got %d", index)
	}
	return &Slot{Index: index, Kind: kind}, nil
}

// Set places sym into the slot.
//
// Precondition: sym must be non-nil. For Fixed and Penalty slots, Set must
// not have been called before; a repeat Set panics.
// Postcondition: Symbol() returns sym.
func (s *Slot) Set(sym *Symbol) {
	if sym == nil {
		panic(fmt.Sprintf("gear: Set(nil) on slot %d", s.Index))
	}
	if s.Kind != SlotOpen && s.written {
		panic(fmt.Sprintf("gear: mutation of %s slot %d after first write", s.Kind, s.Index))
	}
	s.symbolRef = sym
	s.written = true
}

// Clear removes the slot's symbol.
//
// Precondition: the slot must be SlotOpen; clearing a Fixed or Penalty slot
// that has been written panics.
// Postcondition: Symbol() returns nil.
func (s *Slot) Clear() {
	if s.Kind != SlotOpen && s.written {
		panic(fmt.Sprintf("gear: clear of %s slot %d after first write", s.Kind, s.Index))
	}
	s.symbolRef = nil
}

// Symbol returns the symbol held by the slot, or nil when empty.
func (s *Slot) Symbol() *Symbol {
	return s.symbolRef
}

// Loadout is an indexed set of slots belonging to one combatant.
type Loadout struct {
	slots map[int]*Slot
}

// NewLoadout returns an empty loadout.
func NewLoadout() *Loadout {
	return &Loadout{slots: make(map[int]*Slot)}
}

// AddSlot registers a slot in the loadout.
//
// Precondition: no slot with the same index may already exist.
func (l *Loadout) AddSlot(s *Slot) error {
	if _, exists := l.slots[s.Index]; exists {
		return fmt.Errorf("gear: duplicate slot index %d", s.Index)
	}
	l.slots[s.Index] = s
	return nil
}

// Slot returns the slot at index, or nil if absent.
func (l *Loadout) Slot(index int) *Slot {
	return l.slots[index]
}

// Symbols returns all non-empty symbols in the loadout, in index order.
func (l *Loadout) Symbols() []*Symbol {
	max := -1
	for i := range l.slots {
		if i > max {
			max = i
		}
	}
	var out []*Symbol
	for i := 0; i <= max; i++ {
		if s, ok := l.slots[i]; ok && s.Symbol() != nil {
			out = append(out, s.Symbol())
		}
	}
	return out
}
