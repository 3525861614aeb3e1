package service

import "strings"

// parseAddress splits a free-text "street, city, state zip" address into its
// structured parts. Best effort: missing segments stay nil, an input without
// commas becomes the street line, and the state is the first whitespace
// token of the third segment ("FL 33162" -> "FL").
func parseAddress(raw string) (address, city, state *string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, nil
	}

	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, nil, nil
	}

	address = &parts[0]
	if len(parts) >= 2 {
		city = &parts[1]
	}
	if len(parts) >= 3 {
		if tokens := strings.Fields(parts[2]); len(tokens) > 0 {
			state = &tokens[0]
		}
	}
	return address, city, state
}
