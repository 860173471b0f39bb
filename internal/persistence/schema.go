package persistence

import (
	"encoding/json"
	"log"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/shift"
)

// SchemaVersion is written into every saved record.
//
//	0: records written before the version field existed; a single commission
//	   agent lived under exits.puxador.
//	1: exits.commission_agents holds zero or more agents.
const SchemaVersion = 1

// record is the persisted layout of a shift snapshot.
type record struct {
	Version       int                   `json:"version"`
	Entries       domain.Entries        `json:"entries"`
	Exits         recordExits           `json:"exits"`
	Cancellations []domain.Cancellation `json:"cancelamentos"`
	Observations  string                `json:"observations,omitempty"`
}

type recordExits struct {
	domain.Exits
	LegacyAgent *domain.CommissionAgent `json:"puxador,omitempty"`
}

func toRecord(snap domain.Snapshot) record {
	return record{
		Version:       SchemaVersion,
		Entries:       snap.Entries,
		Exits:         recordExits{Exits: snap.Exits},
		Cancellations: snap.Cancellations,
		Observations:  snap.Observations,
	}
}

// decode reads a stored record section by section so that one malformed
// section does not discard the others. It reports how many sections were
// dropped. Only a payload that is not a JSON object at all is an error.
func decode(data []byte) (domain.Snapshot, int, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return domain.Snapshot{}, 0, err
	}

	var rec record
	ok := []bool{
		decodeSection(sections, "version", &rec.Version),
		decodeSection(sections, "entries", &rec.Entries),
		decodeSection(sections, "exits", &rec.Exits),
		decodeSection(sections, "cancelamentos", &rec.Cancellations),
		decodeSection(sections, "observations", &rec.Observations),
	}
	dropped := 0
	for _, decoded := range ok {
		if !decoded {
			dropped++
		}
	}
	return Upgrade(rec), dropped, nil
}

// decodeSection fills dest only when the whole section decodes, so a section
// that fails halfway leaves dest at its zero value.
func decodeSection[T any](sections map[string]json.RawMessage, name string, dest *T) bool {
	raw, ok := sections[name]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return true
	}
	var section T
	if err := json.Unmarshal(raw, &section); err != nil {
		log.Printf("[persistence] WARN: dropping malformed %q section of saved shift: %v", name, err)
		return false
	}
	*dest = section
	return true
}

// Upgrade turns a record of any known version into a fully populated
// snapshot: lists absent from older records become empty lists, flags absent
// from them stay false, and mirrored totals are recomputed.
func Upgrade(rec record) domain.Snapshot {
	snap := domain.Snapshot{
		Entries:       rec.Entries,
		Exits:         rec.Exits.Exits,
		Cancellations: rec.Cancellations,
		Observations:  rec.Observations,
	}

	if rec.Version < 1 && rec.Exits.LegacyAgent != nil && len(snap.Exits.CommissionAgents) == 0 {
		snap.Exits.CommissionAgents = []domain.CommissionAgent{*rec.Exits.LegacyAgent}
	}

	return shift.Normalize(snap)
}
