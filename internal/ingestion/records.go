package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Benny93/graphleague-go/internal/vocab"
)

// MechanicEntry is one HAS_MECHANIC claim of a champion record.
type MechanicEntry struct {
	Mechanic    string `json:"mechanic"`
	Explanation string `json:"explanation"`
}

// WeaknessEntry is one WEAK_TO claim of a champion record.
type WeaknessEntry struct {
	Mechanic string `json:"mechanic"`
	Reason   string `json:"reason"`
}

// ChampionRecord is the extracted form of one champion, as produced by the
// offline extraction step.
type ChampionRecord struct {
	Name       string          `json:"name"`
	Archetype  string          `json:"archetype"`
	Positions  []string        `json:"positions"`
	Mechanics  []MechanicEntry `json:"mechanics"`
	Weaknesses []WeaknessEntry `json:"weaknesses"`
}

// Champion is a record whose fields have been checked against the vocabulary.
type Champion struct {
	Name       string
	Archetype  vocab.Archetype
	Positions  []vocab.Role
	Mechanics  []ChampionMechanic
	Weaknesses []ChampionWeakness
}

// ChampionMechanic is a validated MechanicEntry.
type ChampionMechanic struct {
	Mechanic    vocab.Mechanic
	Explanation string
}

// ChampionWeakness is a validated WeaknessEntry.
type ChampionWeakness struct {
	Mechanic vocab.Mechanic
	Reason   string
}

// RecordError reports why a record was rejected.
type RecordError struct {
	File     string
	Champion string
	Err      error
}

func (e *RecordError) Error() string {
	name := e.Champion
	if name == "" {
		name = "<unnamed>"
	}
	if e.File == "" {
		return fmt.Sprintf("champion %s: %v", name, e.Err)
	}
	return fmt.Sprintf("%s: champion %s: %v", e.File, name, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Validate normalizes the record against the vocabulary. Synonyms are
// accepted; duplicate positions and mechanics collapse to their first entry.
// Every problem found is reported, joined.
func (r ChampionRecord) Validate() (Champion, error) {
	c := Champion{Name: strings.TrimSpace(r.Name)}
	var errs []error

	if c.Name == "" {
		errs = append(errs, errors.New("missing name"))
	}

	archetype, err := vocab.NormalizeArchetype(r.Archetype)
	if err != nil {
		errs = append(errs, err)
	}
	c.Archetype = archetype

	if len(r.Positions) == 0 {
		errs = append(errs, errors.New("no positions"))
	}
	seenRole := make(map[vocab.Role]bool)
	for _, p := range r.Positions {
		role, err := vocab.NormalizeRole(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !seenRole[role] {
			seenRole[role] = true
			c.Positions = append(c.Positions, role)
		}
	}

	seenMechanic := make(map[vocab.Mechanic]bool)
	for _, m := range r.Mechanics {
		mechanic, err := vocab.NormalizeMechanic(m.Mechanic)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !seenMechanic[mechanic] {
			seenMechanic[mechanic] = true
			c.Mechanics = append(c.Mechanics, ChampionMechanic{mechanic, strings.TrimSpace(m.Explanation)})
		}
	}

	seenWeakness := make(map[vocab.Mechanic]bool)
	for _, w := range r.Weaknesses {
		mechanic, err := vocab.NormalizeMechanic(w.Mechanic)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !seenWeakness[mechanic] {
			seenWeakness[mechanic] = true
			c.Weaknesses = append(c.Weaknesses, ChampionWeakness{mechanic, strings.TrimSpace(w.Reason)})
		}
	}

	return c, errors.Join(errs...)
}

// DecodeRecords parses a data file. Both a bare array of records and an
// object with a "champions" array are accepted.
func DecodeRecords(data []byte) ([]ChampionRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var records []ChampionRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decoding records: %w", err)
		}
		return records, nil
	}

	var doc struct {
		Champions []ChampionRecord `json:"champions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return doc.Champions, nil
}
