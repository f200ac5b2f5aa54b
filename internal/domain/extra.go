package domain

import "encoding/json"

// Extra holds members of a JSON object beyond the fields a type models
type Extra map[string]json.RawMessage

// splitExtra returns the members of the object in data whose keys are not in known
func splitExtra(data []byte, known map[string]bool) (Extra, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}

	var extra Extra
	for k, v := range members {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[k] = v
	}
	return extra, nil
}

// mergeExtra adds extra members to an encoded object; modeled keys always win
func mergeExtra(encoded []byte, extra Extra, known map[string]bool) ([]byte, error) {
	if len(extra) == 0 {
		return encoded, nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &members); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if known[k] {
			continue
		}
		members[k] = v
	}
	return json.Marshal(members)
}

func keySet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// ExtraMembers returns the members of the JSON object in data not named in known
func ExtraMembers(data []byte, known ...string) (Extra, error) {
	return splitExtra(data, keySet(known...))
}
