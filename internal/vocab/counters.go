package vocab

import "slices"

// ArchetypeCounter is one authored edge of the archetype counter web: Counter
// has the upper hand against Target for Reason.
type ArchetypeCounter struct {
	Counter Archetype `json:"counter"`
	Target  Archetype `json:"target"`
	Reason  string    `json:"reason"`
}

// The web is a soft rock-paper-scissors graph. Cycles and mutual pairs
// (Burst and Enchanter) are intentional.
var archetypeCounterWeb = []ArchetypeCounter{
	{ArchetypeVanguard, ArchetypeMarksman, "Hard engage catches immobile marksmen before they can kite."},
	{ArchetypeVanguard, ArchetypeArtillery, "Engage tanks close the distance artillery mages need to survive."},
	{ArchetypeWarden, ArchetypeDiver, "Wardens peel divers off the backline and punish their commit."},
	{ArchetypeWarden, ArchetypeBurst, "Protective tools deny the single window burst mages rely on."},
	{ArchetypeDiver, ArchetypeArtillery, "Divers gap close onto immobile poke mages."},
	{ArchetypeDiver, ArchetypeMarksman, "Divers reach and lock down the carry in extended fights."},
	{ArchetypeDiver, ArchetypeEnchanter, "Enchanters lack the damage to stop a diver in their face."},
	{ArchetypeJuggernaut, ArchetypeVanguard, "Juggernauts out-sustain and out-damage tanks in long trades."},
	{ArchetypeJuggernaut, ArchetypeWarden, "Wardens cannot kill a juggernaut that walks through their peel."},
	{ArchetypeJuggernaut, ArchetypeDiver, "Juggernauts punish divers that commit into melee range."},
	{ArchetypeBurst, ArchetypeMarksman, "Burst mages delete fragile marksmen in one rotation."},
	{ArchetypeBurst, ArchetypeArtillery, "Burst mages kill squishy artillery before the poke adds up."},
	{ArchetypeBurst, ArchetypeEnchanter, "Enchanters are squishy targets that die to a single combo."},
	{ArchetypeEnchanter, ArchetypeBurst, "Shields and heals absorb burst combos and waste their cooldowns."},
	{ArchetypeBattlemage, ArchetypeJuggernaut, "Sustained magic damage in melee range grinds down juggernauts."},
	{ArchetypeBattlemage, ArchetypeVanguard, "Battlemages thrive in the close fights vanguards start."},
	{ArchetypeArtillery, ArchetypeJuggernaut, "Immobile juggernauts get poked out before reaching anyone."},
	{ArchetypeArtillery, ArchetypeBattlemage, "Battlemages must walk in and are whittled down by long-range poke."},
	{ArchetypeArtillery, ArchetypeWarden, "Poke wears wardens down before a fight starts."},
	{ArchetypeMarksman, ArchetypeJuggernaut, "Marksmen kite slow juggernauts with sustained ranged damage."},
	{ArchetypeMarksman, ArchetypeVanguard, "Marksmen shred tanks once their engage has been baited."},
	{ArchetypeCatcher, ArchetypeArtillery, "Immobile artillery mages are easy targets for hooks and picks."},
	{ArchetypeCatcher, ArchetypeMarksman, "A single catch removes the marksman from the fight."},
	{ArchetypeCatcher, ArchetypeBurst, "Burst mages step forward to combo and get caught doing it."},
}

// ArchetypeCounterWeb returns the authored archetype counter edges.
func ArchetypeCounterWeb() []ArchetypeCounter {
	return slices.Clone(archetypeCounterWeb)
}

// Weakness is an implied vulnerability: a champion with Has is weak to WeakTo.
type Weakness struct {
	Has    Mechanic `json:"has"`
	WeakTo Mechanic `json:"weak_to"`
	Reason string   `json:"reason"`
}

var weaknessRules = []Weakness{
	{MechanicHighSustain, MechanicGrievousWounds, "Healing is cut down by Grievous Wounds."},
	{MechanicShielding, MechanicShieldReave, "Shields are destroyed by Shield Reave."},
	{MechanicProjectileReliant, MechanicProjectileBlock, "Key skillshots can be blocked or destroyed."},
	{MechanicHighMobility, MechanicAntiDash, "Dashes can be grounded or interrupted."},
}

// WeaknessRules returns the mechanic-implies-weakness rules applied during
// ingestion.
func WeaknessRules() []Weakness {
	return slices.Clone(weaknessRules)
}

// ImpliedWeakness returns the weakness implied by having m, if any.
func ImpliedWeakness(m Mechanic) (Weakness, bool) {
	for _, w := range weaknessRules {
		if w.Has == m {
			return w, true
		}
	}
	return Weakness{}, false
}
