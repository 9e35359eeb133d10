package domain

// EffectKind tags the operation an Effect performs on a Session.
type EffectKind string

const (
	// EffectAddJournal appends Value to the session journal.
	EffectAddJournal EffectKind = "add_journal"
	// EffectAddInventory appends Value to the session inventory.
	EffectAddInventory EffectKind = "add_inventory"
	// EffectNameEntity records Value as the name of Role, unless the role is already named.
	EffectNameEntity EffectKind = "name_entity"
)

// Effect is a bookkeeping operation attached to a Transition.
// Kinds unknown to the engine are kept as loaded and ignored when applied.
type Effect struct {
	Kind  EffectKind `json:"kind"`
	Value string     `json:"value"`
	Role  string     `json:"role,omitempty"`
}

// AddJournal creates an effect that appends a journal entry.
func AddJournal(text string) Effect {
	return Effect{Kind: EffectAddJournal, Value: text}
}

// AddInventory creates an effect that adds an item to the inventory.
func AddInventory(item string) Effect {
	return Effect{Kind: EffectAddInventory, Value: item}
}

// NameEntity creates an effect that names a role (e.g. "steward" -> "Aldric").
func NameEntity(role, name string) Effect {
	return Effect{Kind: EffectNameEntity, Role: role, Value: name}
}

// Known reports whether the engine knows how to apply the effect.
func (e Effect) Known() bool {
	switch e.Kind {
	case EffectAddJournal, EffectAddInventory, EffectNameEntity:
		return true
	default:
		return false
	}
}
