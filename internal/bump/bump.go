// Package bump implements the BumpRecommendation monoid and the analysis
// that turns a set of Conventional Commits into a recommendation, grounded
// on original_source's commit_analyzer.rs (BumpRecommendation::merge,
// recommend_bump_for_commits).
package bump

import "github.com/ilblu/belaf/internal/conventional"

// Recommendation is the closed set of bump sizes a commit or a set of
// commits can recommend, ordered by severity so Merge can take a max.
type Recommendation int

const (
	None Recommendation = iota
	Patch
	Minor
	Major
)

func (r Recommendation) String() string {
	switch r {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	default:
		return "none"
	}
}

// Merge implements the monoid: the identity is None, and combining two
// recommendations yields the more severe of the two. This is associative and
// commutative, so callers may fold a commit set in any order.
func (r Recommendation) Merge(other Recommendation) Recommendation {
	if other > r {
		return other
	}
	return r
}

// Config gates how a Conventional Commit's type/breaking marker maps to a
// Recommendation, mirroring config.BumpConfig's
// features_always_bump_minor/breaking_always_bump_major knobs.
type Config struct {
	// FeaturesAlwaysBumpMinor, when false, demotes a "feat" commit to a
	// Patch recommendation instead of Minor.
	FeaturesAlwaysBumpMinor bool
	// BreakingAlwaysBumpMajor, when false, lets a breaking commit fall
	// through to its ordinary type-based recommendation instead of always
	// forcing Major; a breaking commit whose type carries no bump of its
	// own still recommends Patch.
	BreakingAlwaysBumpMajor bool
}

// DefaultConfig matches default.toml: both knobs on, the spec's baseline
// Conventional Commits behavior.
func DefaultConfig() Config {
	return Config{FeaturesAlwaysBumpMinor: true, BreakingAlwaysBumpMajor: true}
}

// ForCommit classifies a single parsed Conventional Commit under cfg.
func ForCommit(c conventional.Commit, cfg Config) Recommendation {
	if c.Breaking && cfg.BreakingAlwaysBumpMajor {
		return Major
	}
	switch c.Type {
	case "feat":
		if cfg.FeaturesAlwaysBumpMinor {
			return Minor
		}
		return Patch
	case "fix", "perf":
		return Patch
	default:
		if c.Breaking {
			return Patch
		}
		return None
	}
}

// Analysis summarizes a commit set's classification, mirroring
// original_source's CommitAnalysis.
type Analysis struct {
	Recommendation Recommendation
	TotalCommits   int
	FeatCount      int
	FixCount       int
	BreakingCount  int
	OtherCount     int
}

// Analyze folds raw commit messages into an Analysis under cfg. Messages
// that don't parse as Conventional Commits are counted in OtherCount and
// contribute None to the recommendation, matching the tolerant handling
// described in conventional.Parse.
func Analyze(messages []string, cfg Config) Analysis {
	var a Analysis
	for _, msg := range messages {
		a.TotalCommits++
		c, ok := conventional.Parse(msg)
		if !ok {
			a.OtherCount++
			continue
		}
		if c.Breaking {
			a.BreakingCount++
		}
		switch c.Type {
		case "feat":
			a.FeatCount++
		case "fix", "perf":
			a.FixCount++
		default:
			if !c.Breaking {
				a.OtherCount++
			}
		}
		a.Recommendation = a.Recommendation.Merge(ForCommit(c, cfg))
	}
	return a
}

// Recommend is a convenience wrapper returning only the merged
// recommendation for a commit set, under cfg.
func Recommend(messages []string, cfg Config) Recommendation {
	return Analyze(messages, cfg).Recommendation
}
