// Package vocab defines the closed vocabularies shared by the intent
// classifier and the graph query engine.
//
// Roles, mechanics and archetypes are fixed enumerations. Every value that
// crosses a package boundary is checked against them, and anything outside the
// set is rejected with a ValidationError instead of being passed through.
package vocab

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("invalid vocabulary value")

// ValidationError reports a value outside one of the closed vocabularies.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrInvalid) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// AnyLane is the display name used when no lane filter applies.
const AnyLane = "Any Lane"

// Role is a lane assignment.
type Role string

const (
	RoleTop     Role = "Top"
	RoleJungle  Role = "Jungle"
	RoleMid     Role = "Mid"
	RoleBot     Role = "Bot"
	RoleSupport Role = "Support"
)

var roles = []Role{RoleTop, RoleJungle, RoleMid, RoleBot, RoleSupport}

// Roles returns the five lanes in map order, top to support.
func Roles() []Role { return slices.Clone(roles) }

// IsValid reports whether r is one of the five lanes.
func (r Role) IsValid() bool { return slices.Contains(roles, r) }

// ValidateOptional accepts the empty role (no lane filter) or a valid lane.
func (r Role) ValidateOptional() error {
	if r == "" || r.IsValid() {
		return nil
	}
	return &ValidationError{Field: "role", Value: string(r)}
}

// Display returns the lane name, or "Any Lane" for the empty role.
func (r Role) Display() string {
	if r == "" {
		return AnyLane
	}
	return string(r)
}

// ParseRole returns the role whose canonical name matches s, ignoring case.
func ParseRole(s string) (Role, error) { return parse("role", roles, s) }

// Mechanic is a named strategic capability or vulnerability.
type Mechanic string

const (
	MechanicProjectileBlock   Mechanic = "Projectile Block"
	MechanicHighSustain       Mechanic = "High Sustain"
	MechanicGrievousWounds    Mechanic = "Grievous Wounds"
	MechanicShieldReave       Mechanic = "Shield Reave"
	MechanicTrueSight         Mechanic = "True Sight"
	MechanicInvisibility      Mechanic = "Invisibility"
	MechanicHighMobility      Mechanic = "High Mobility"
	MechanicAntiDash          Mechanic = "Anti-Dash"
	MechanicUnstoppable       Mechanic = "Unstoppable"
	MechanicPercentHPDamage   Mechanic = "Percent HP Dmg"
	MechanicKnockUp           Mechanic = "Knock Up"
	MechanicAntiAutoAttack    Mechanic = "Anti-Auto Attack"
	MechanicCleanse           Mechanic = "Cleanse"
	MechanicShielding         Mechanic = "Shielding"
	MechanicProjectileReliant Mechanic = "Projectile Reliant"
)

var mechanics = []Mechanic{
	MechanicProjectileBlock,
	MechanicHighSustain,
	MechanicGrievousWounds,
	MechanicShieldReave,
	MechanicTrueSight,
	MechanicInvisibility,
	MechanicHighMobility,
	MechanicAntiDash,
	MechanicUnstoppable,
	MechanicPercentHPDamage,
	MechanicKnockUp,
	MechanicAntiAutoAttack,
	MechanicCleanse,
	MechanicShielding,
	MechanicProjectileReliant,
}

var mechanicDescriptions = map[Mechanic]string{
	MechanicProjectileBlock:   "Blocks or destroys enemy projectiles.",
	MechanicHighSustain:       "Kit revolves around healing.",
	MechanicGrievousWounds:    "Reduces enemy healing.",
	MechanicShieldReave:       "Destroys enemy shields.",
	MechanicTrueSight:         "Reveals invisible or camouflaged enemies.",
	MechanicInvisibility:      "Can become invisible or camouflaged.",
	MechanicHighMobility:      "Kit heavily revolves around dashes and movement speed.",
	MechanicAntiDash:          "Prevents movement abilities (grounding) or stops enemies mid-dash.",
	MechanicUnstoppable:       "Grants immunity to crowd control.",
	MechanicPercentHPDamage:   "Deals damage based on a percentage of health.",
	MechanicKnockUp:           "Knocks enemies airborne.",
	MechanicAntiAutoAttack:    "Dodges or blinds basic attacks.",
	MechanicCleanse:           "Removes crowd control effects.",
	MechanicShielding:         "Relies heavily on shields.",
	MechanicProjectileReliant: "Decisive abilities are skillshots or projectiles.",
}

// Mechanics returns every mechanic in declaration order.
func Mechanics() []Mechanic { return slices.Clone(mechanics) }

// IsValid reports whether m is a known mechanic.
func (m Mechanic) IsValid() bool { return slices.Contains(mechanics, m) }

// Validate returns a ValidationError for unknown mechanics.
func (m Mechanic) Validate() error {
	if m.IsValid() {
		return nil
	}
	return &ValidationError{Field: "mechanic", Value: string(m)}
}

// Description is a one-line definition of the mechanic.
func (m Mechanic) Description() string { return mechanicDescriptions[m] }

// ParseMechanic returns the mechanic whose canonical name matches s, ignoring case.
func ParseMechanic(s string) (Mechanic, error) { return parse("mechanic", mechanics, s) }

// Archetype is a champion's playstyle class.
type Archetype string

const (
	ArchetypeVanguard   Archetype = "Vanguard"
	ArchetypeWarden     Archetype = "Warden"
	ArchetypeDiver      Archetype = "Diver"
	ArchetypeJuggernaut Archetype = "Juggernaut"
	ArchetypeBurst      Archetype = "Burst"
	ArchetypeBattlemage Archetype = "Battlemage"
	ArchetypeArtillery  Archetype = "Artillery"
	ArchetypeMarksman   Archetype = "Marksman"
	ArchetypeEnchanter  Archetype = "Enchanter"
	ArchetypeCatcher    Archetype = "Catcher"
)

var archetypes = []Archetype{
	ArchetypeVanguard,
	ArchetypeWarden,
	ArchetypeDiver,
	ArchetypeJuggernaut,
	ArchetypeBurst,
	ArchetypeBattlemage,
	ArchetypeArtillery,
	ArchetypeMarksman,
	ArchetypeEnchanter,
	ArchetypeCatcher,
}

var archetypeDescriptions = map[Archetype]string{
	ArchetypeVanguard:   "Aggressive tanks with hard, offensive engage.",
	ArchetypeWarden:     "Defensive tanks that protect allies.",
	ArchetypeDiver:      "Fighters who dive backlines without being pure tanks.",
	ArchetypeJuggernaut: "High durability and damage, low mobility.",
	ArchetypeBurst:      "Designed to take a target from full health to zero instantly.",
	ArchetypeBattlemage: "Sustained close-range magic damage.",
	ArchetypeArtillery:  "Extreme range poke, low mobility.",
	ArchetypeMarksman:   "Continuous ranged attack damage, traditional carries.",
	ArchetypeEnchanter:  "Heals, shields and buffs allies.",
	ArchetypeCatcher:    "Fishes for picks with hooks and lockdown.",
}

// Archetypes returns every archetype in declaration order.
func Archetypes() []Archetype { return slices.Clone(archetypes) }

// IsValid reports whether a is a known archetype.
func (a Archetype) IsValid() bool { return slices.Contains(archetypes, a) }

// Validate returns a ValidationError for unknown archetypes.
func (a Archetype) Validate() error {
	if a.IsValid() {
		return nil
	}
	return &ValidationError{Field: "archetype", Value: string(a)}
}

// Description is a one-line definition of the archetype.
func (a Archetype) Description() string { return archetypeDescriptions[a] }

// ParseArchetype returns the archetype whose canonical name matches s, ignoring case.
func ParseArchetype(s string) (Archetype, error) { return parse("archetype", archetypes, s) }

// IntentKind names one variant of the intent sum type.
type IntentKind string

const (
	IntentCounterPick       IntentKind = "counter_pick"
	IntentMechanicSearch    IntentKind = "mechanic_search"
	IntentArchetypeCounters IntentKind = "archetype_counter"
	IntentUnknown           IntentKind = "unknown"
)

var intentKinds = []IntentKind{
	IntentCounterPick,
	IntentMechanicSearch,
	IntentArchetypeCounters,
	IntentUnknown,
}

// IntentKinds returns the four intent kinds.
func IntentKinds() []IntentKind { return slices.Clone(intentKinds) }

// IsValid reports whether k is one of the four intent kinds.
func (k IntentKind) IsValid() bool { return slices.Contains(intentKinds, k) }

// ParseIntentKind returns the kind whose wire name matches s.
func ParseIntentKind(s string) (IntentKind, error) { return parse("intent kind", intentKinds, s) }

func parse[T ~string](field string, values []T, s string) (T, error) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	var zero T
	return zero, &ValidationError{Field: field, Value: s}
}
