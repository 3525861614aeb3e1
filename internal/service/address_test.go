package service

import "testing"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		address string
		city    string
		state   string
	}{
		{
			name:    "full three segment address",
			raw:     "123 Main St, Miami, FL 33162",
			address: "123 Main St",
			city:    "Miami",
			state:   "FL",
		},
		{
			name:    "no commas keeps whole string as street",
			raw:     "123 Main St",
			address: "123 Main St",
		},
		{
			name:    "two segments",
			raw:     "55 Ocean Dr, Hollywood",
			address: "55 Ocean Dr",
			city:    "Hollywood",
		},
		{
			name:    "state without zip",
			raw:     "9 Pine Rd, Aventura, FL",
			address: "9 Pine Rd",
			city:    "Aventura",
			state:   "FL",
		},
		{
			name:    "extra segments after state are dropped",
			raw:     "1 Biscayne Blvd, Miami, FL 33132, USA",
			address: "1 Biscayne Blvd",
			city:    "Miami",
			state:   "FL",
		},
		{
			name:    "blank segments are skipped",
			raw:     " 77 Sunset Way ,, FL 33010",
			address: "77 Sunset Way",
			city:    "FL 33010",
		},
		{
			name: "empty input",
			raw:  "",
		},
		{
			name: "only commas",
			raw:  ",,,",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			address, city, state := parseAddress(tc.raw)
			assertOptional(t, "address", address, tc.address)
			assertOptional(t, "city", city, tc.city)
			assertOptional(t, "state", state, tc.state)
		})
	}
}

func assertOptional(t *testing.T, field string, got *string, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Fatalf("expected %s to be nil, got %q", field, *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("expected %s %q, got nil", field, want)
	}
	if *got != want {
		t.Fatalf("expected %s %q, got %q", field, want, *got)
	}
}
