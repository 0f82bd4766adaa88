package conventional

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		name         string
		raw          string
		wantOk       bool
		wantType     string
		wantScope    string
		wantBreaking bool
	}{
		{name: "simple feat", raw: "feat: add widget", wantOk: true, wantType: "feat"},
		{name: "scoped fix", raw: "fix(api): handle nil pointer", wantOk: true, wantType: "fix", wantScope: "api"},
		{name: "breaking bang", raw: "feat(api)!: drop v1 endpoint", wantOk: true, wantType: "feat", wantScope: "api", wantBreaking: true},
		{
			name:         "breaking footer",
			raw:          "feat: add widget\n\nBREAKING CHANGE: removes the old widget API",
			wantOk:       true,
			wantType:     "feat",
			wantBreaking: true,
		},
		{name: "not conventional", raw: "quick wip commit", wantOk: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := Parse(tc.raw)
			if ok != tc.wantOk {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.raw, ok, tc.wantOk)
			}
			if !ok {
				return
			}
			if c.Type != tc.wantType {
				t.Errorf("Type = %q, want %q", c.Type, tc.wantType)
			}
			if c.Scope != tc.wantScope {
				t.Errorf("Scope = %q, want %q", c.Scope, tc.wantScope)
			}
			if c.Breaking != tc.wantBreaking {
				t.Errorf("Breaking = %v, want %v", c.Breaking, tc.wantBreaking)
			}
		})
	}
}
