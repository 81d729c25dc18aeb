package vocab

// Term is a vocabulary entry with its description.
type Term struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Document is the whole vocabulary in a serializable form.
type Document struct {
	Roles             []Role             `json:"roles"`
	Mechanics         []Term             `json:"mechanics"`
	Archetypes        []Term             `json:"archetypes"`
	Intents           []IntentKind       `json:"intents"`
	ArchetypeCounters []ArchetypeCounter `json:"archetype_counters"`
	WeaknessRules     []Weakness         `json:"weakness_rules"`
}

// NewDocument describes the vocabulary.
func NewDocument() Document {
	d := Document{
		Roles:             Roles(),
		Intents:           IntentKinds(),
		ArchetypeCounters: ArchetypeCounterWeb(),
		WeaknessRules:     WeaknessRules(),
	}
	for _, m := range mechanics {
		d.Mechanics = append(d.Mechanics, Term{string(m), m.Description()})
	}
	for _, a := range archetypes {
		d.Archetypes = append(d.Archetypes, Term{string(a), a.Description()})
	}
	return d
}
