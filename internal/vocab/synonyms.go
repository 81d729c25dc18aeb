package vocab

import (
	"sort"
	"strings"
)

var roleSynonyms = map[string]Role{
	"top lane":    RoleTop,
	"toplane":     RoleTop,
	"top laner":   RoleTop,
	"top laners":  RoleTop,
	"tops":        RoleTop,
	"baron lane":  RoleTop,
	"jungle":      RoleJungle,
	"jungler":     RoleJungle,
	"junglers":    RoleJungle,
	"jg":          RoleJungle,
	"jng":         RoleJungle,
	"jgl":         RoleJungle,
	"jung":        RoleJungle,
	"middle":      RoleMid,
	"mid lane":    RoleMid,
	"midlane":     RoleMid,
	"mid laner":   RoleMid,
	"mid laners":  RoleMid,
	"mids":        RoleMid,
	"bot":         RoleBot,
	"bottom":      RoleBot,
	"bot lane":    RoleBot,
	"botlane":     RoleBot,
	"bottom lane": RoleBot,
	"bot laner":   RoleBot,
	"adc":         RoleBot,
	"adcs":        RoleBot,
	"ad carry":    RoleBot,
	"ad carries":  RoleBot,
	"marksman":    RoleBot,
	"marksmen":    RoleBot,
	"carry":       RoleBot,
	"support":     RoleSupport,
	"supports":    RoleSupport,
	"supp":        RoleSupport,
	"sup":         RoleSupport,
	"sp":          RoleSupport,
	"supporter":   RoleSupport,
}

var mechanicSynonyms = map[string]Mechanic{
	"windwall":              MechanicProjectileBlock,
	"wind wall":             MechanicProjectileBlock,
	"anti projectile":       MechanicProjectileBlock,
	"projectile blocking":   MechanicProjectileBlock,
	"block projectiles":     MechanicProjectileBlock,
	"blocks projectiles":    MechanicProjectileBlock,
	"sustain":               MechanicHighSustain,
	"healing":               MechanicHighSustain,
	"self healing":          MechanicHighSustain,
	"lifesteal":             MechanicHighSustain,
	"drain":                 MechanicHighSustain,
	"anti heal":             MechanicGrievousWounds,
	"antiheal":              MechanicGrievousWounds,
	"grievous":              MechanicGrievousWounds,
	"gw":                    MechanicGrievousWounds,
	"healing reduction":     MechanicGrievousWounds,
	"heal reduction":        MechanicGrievousWounds,
	"reduces healing":       MechanicGrievousWounds,
	"shield break":          MechanicShieldReave,
	"shield breaker":        MechanicShieldReave,
	"shield breaking":       MechanicShieldReave,
	"anti shield":           MechanicShieldReave,
	"reveal":                MechanicTrueSight,
	"reveals":               MechanicTrueSight,
	"vision":                MechanicTrueSight,
	"stealth":               MechanicInvisibility,
	"invisible":             MechanicInvisibility,
	"invis":                 MechanicInvisibility,
	"camouflage":            MechanicInvisibility,
	"camo":                  MechanicInvisibility,
	"mobility":              MechanicHighMobility,
	"mobile":                MechanicHighMobility,
	"dash heavy":            MechanicHighMobility,
	"antidash":              MechanicAntiDash,
	"grounding":             MechanicAntiDash,
	"ground":                MechanicAntiDash,
	"stops dashes":          MechanicAntiDash,
	"cc immune":             MechanicUnstoppable,
	"cc immunity":           MechanicUnstoppable,
	"unstoppable":           MechanicUnstoppable,
	"percent hp damage":     MechanicPercentHPDamage,
	"percent health damage": MechanicPercentHPDamage,
	"max hp damage":         MechanicPercentHPDamage,
	"max health damage":     MechanicPercentHPDamage,
	"% hp":                  MechanicPercentHPDamage,
	"tank shred":            MechanicPercentHPDamage,
	"tank shredder":         MechanicPercentHPDamage,
	"knockup":               MechanicKnockUp,
	"knock ups":             MechanicKnockUp,
	"knockups":              MechanicKnockUp,
	"airborne":              MechanicKnockUp,
	"anti auto":             MechanicAntiAutoAttack,
	"anti autos":            MechanicAntiAutoAttack,
	"blind":                 MechanicAntiAutoAttack,
	"dodge":                 MechanicAntiAutoAttack,
	"qss":                   MechanicCleanse,
	"cc cleanse":            MechanicCleanse,
	"shields":               MechanicShielding,
	"shield":                MechanicShielding,
	"skillshot":             MechanicProjectileReliant,
	"skillshots":            MechanicProjectileReliant,
	"skillshot reliant":     MechanicProjectileReliant,
}

var archetypeSynonyms = map[string]Archetype{
	"engage tank":    ArchetypeVanguard,
	"engage tanks":   ArchetypeVanguard,
	"engager":        ArchetypeVanguard,
	"protector":      ArchetypeWarden,
	"protectors":     ArchetypeWarden,
	"peel tank":      ArchetypeWarden,
	"bruiser":        ArchetypeDiver,
	"bruisers":       ArchetypeDiver,
	"fighter":        ArchetypeDiver,
	"fighters":       ArchetypeDiver,
	"assassin":       ArchetypeBurst,
	"assassins":      ArchetypeBurst,
	"burst mage":     ArchetypeBurst,
	"burst mages":    ArchetypeBurst,
	"poke mage":      ArchetypeArtillery,
	"poke mages":     ArchetypeArtillery,
	"artillery mage": ArchetypeArtillery,
	"poke":           ArchetypeArtillery,
	"adc":            ArchetypeMarksman,
	"adcs":           ArchetypeMarksman,
	"marksmen":       ArchetypeMarksman,
	"enchanters":     ArchetypeEnchanter,
	"healer":         ArchetypeEnchanter,
	"healers":        ArchetypeEnchanter,
	"hook":           ArchetypeCatcher,
	"hooks":          ArchetypeCatcher,
	"pick":           ArchetypeCatcher,
}

// NormalizeRole maps a lane name or informal synonym (adc, jg, sp, ...) to its
// canonical role.
func NormalizeRole(s string) (Role, error) {
	return normalize("role", roles, roleSynonyms, s)
}

// NormalizeMechanic maps a mechanic name or nickname (anti-heal, windwall, ...)
// to its canonical mechanic.
func NormalizeMechanic(s string) (Mechanic, error) {
	return normalize("mechanic", mechanics, mechanicSynonyms, s)
}

// NormalizeArchetype maps an archetype name, plural or nickname to its
// canonical archetype.
func NormalizeArchetype(s string) (Archetype, error) {
	a, err := normalize("archetype", archetypes, archetypeSynonyms, s)
	if err == nil {
		return a, nil
	}
	if k := key(s); strings.HasSuffix(k, "s") {
		if a, perr := normalize("archetype", archetypes, archetypeSynonyms, strings.TrimSuffix(k, "s")); perr == nil {
			return a, nil
		}
	}
	return "", err
}

// Phrase pairs a synonym or canonical name with the value it maps to.
type Phrase[T ~string] struct {
	Text  string
	Value T
}

// RolePhrases lists every lowercase phrase that names a role, longest first.
func RolePhrases() []Phrase[Role] { return phrases(roles, roleSynonyms) }

// MechanicPhrases lists every lowercase phrase that names a mechanic, longest first.
func MechanicPhrases() []Phrase[Mechanic] { return phrases(mechanics, mechanicSynonyms) }

// ArchetypePhrases lists every lowercase phrase that names an archetype, longest first.
func ArchetypePhrases() []Phrase[Archetype] {
	out := phrases(archetypes, archetypeSynonyms)
	for _, a := range archetypes {
		k := key(string(a))
		if !strings.HasSuffix(k, "s") && k != "marksman" {
			out = append(out, Phrase[Archetype]{Text: k + "s", Value: a})
		}
	}
	sortPhrases(out)
	return out
}

func normalize[T ~string](field string, values []T, synonyms map[string]T, s string) (T, error) {
	k := key(s)
	for _, v := range values {
		if key(string(v)) == k {
			return v, nil
		}
	}
	if v, ok := synonyms[k]; ok {
		return v, nil
	}
	var zero T
	return zero, &ValidationError{Field: field, Value: strings.TrimSpace(s)}
}

func phrases[T ~string](values []T, synonyms map[string]T) []Phrase[T] {
	out := make([]Phrase[T], 0, len(values)+len(synonyms))
	for _, v := range values {
		out = append(out, Phrase[T]{Text: key(string(v)), Value: v})
	}
	for text, v := range synonyms {
		out = append(out, Phrase[T]{Text: text, Value: v})
	}
	sortPhrases(out)
	return out
}

func sortPhrases[T ~string](p []Phrase[T]) {
	sort.SliceStable(p, func(i, j int) bool {
		if len(p[i].Text) != len(p[j].Text) {
			return len(p[i].Text) > len(p[j].Text)
		}
		return p[i].Text < p[j].Text
	})
}

// key lowercases s, treats '-' and '_' as spaces and collapses whitespace.
func key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	s = strings.Trim(s, "?!.,")
	return strings.Join(strings.Fields(s), " ")
}
