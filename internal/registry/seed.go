package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// seedFile is the curated roster format: canonical names with their known
// spellings, plus loose raw → canonical aliases.
type seedFile struct {
	Normalized map[string][]string `json:"normalized"`
	Aliases    map[string]string   `json:"aliases"`
}

// Seed adds a curated roster to reg and returns how many canonical names
// were new. Canonical names are taken verbatim.
func Seed(reg *Registry, r io.Reader) (int, error) {
	var seed seedFile
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return 0, fmt.Errorf("failed to decode registry seed: %w", err)
	}

	canonicals := make([]string, 0, len(seed.Normalized))
	for name := range seed.Normalized {
		canonicals = append(canonicals, name)
	}
	sort.Strings(canonicals)

	aliases := make([]string, 0, len(seed.Aliases))
	for raw := range seed.Aliases {
		aliases = append(aliases, raw)
	}
	sort.Strings(aliases)

	added := 0
	err := reg.Update(func(tx Tx) error {
		for _, name := range canonicals {
			entry, inserted := tx.InsertCanonical(name)
			if inserted {
				added++
			}
			for _, v := range seed.Normalized[name] {
				if err := tx.RecordVariant(entry.Canonical, v); err != nil {
					return err
				}
			}
		}
		for _, raw := range aliases {
			target := seed.Aliases[raw]
			entry, inserted := tx.InsertCanonical(target)
			if inserted {
				added++
			}
			if err := tx.RecordVariant(entry.Canonical, raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
