package bump

import "testing"

func TestMergeTakesMostSevere(t *testing.T) {
	if got := Patch.Merge(Minor); got != Minor {
		t.Errorf("Patch.Merge(Minor) = %v, want Minor", got)
	}
	if got := Major.Merge(Minor); got != Major {
		t.Errorf("Major.Merge(Minor) = %v, want Major", got)
	}
	if got := None.Merge(None); got != None {
		t.Errorf("None.Merge(None) = %v, want None", got)
	}
}

func TestRecommendFromMessages(t *testing.T) {
	cases := []struct {
		name string
		msgs []string
		want Recommendation
	}{
		{name: "single feat", msgs: []string{"feat: add thing"}, want: Minor},
		{name: "single fix", msgs: []string{"fix: correct thing"}, want: Patch},
		{name: "breaking bang wins", msgs: []string{"fix: small patch", "feat(api)!: break it"}, want: Major},
		{name: "breaking footer wins", msgs: []string{"feat: add thing\n\nBREAKING CHANGE: oops"}, want: Major},
		{name: "mixed picks highest", msgs: []string{"chore: tidy", "fix: bug", "feat: widget"}, want: Minor},
		{name: "unconventional only", msgs: []string{"wip", "more wip"}, want: None},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Recommend(tc.msgs, DefaultConfig()); got != tc.want {
				t.Errorf("Recommend(%v) = %v, want %v", tc.msgs, got, tc.want)
			}
		})
	}
}

func TestConfigGatesFeatureAndBreakingSeverity(t *testing.T) {
	noMinorFeats := Config{FeaturesAlwaysBumpMinor: false, BreakingAlwaysBumpMajor: true}
	if got := Recommend([]string{"feat: add thing"}, noMinorFeats); got != Patch {
		t.Errorf("feat with FeaturesAlwaysBumpMinor=false = %v, want Patch", got)
	}

	noMajorBreaking := Config{FeaturesAlwaysBumpMinor: true, BreakingAlwaysBumpMajor: false}
	if got := Recommend([]string{"feat(api)!: break it"}, noMajorBreaking); got != Minor {
		t.Errorf("breaking feat with BreakingAlwaysBumpMajor=false = %v, want Minor (its own type severity)", got)
	}
	if got := Recommend([]string{"chore!: break it"}, noMajorBreaking); got != Patch {
		t.Errorf("breaking non-feat/fix with BreakingAlwaysBumpMajor=false = %v, want Patch", got)
	}
}
