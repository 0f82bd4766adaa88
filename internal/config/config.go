// Package config loads the engine's layered TOML configuration: an embedded
// default.toml decoded first, then a repository-local belaf/config.toml
// overlay decoded into the same struct, matching original_source's
// ConfigurationFile::get layering (embedded defaults + optional user file)
// and the teacher's general preference for pelletier/go-toml/v2 over any
// other TOML library.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed default.toml
var defaultTOML []byte

// Path is the repository-relative location of the user overlay file.
const Path = "belaf/config.toml"

// AnalysisConfig bounds the gitrepo LRU caches.
type AnalysisConfig struct {
	CommitCacheSize int `toml:"commit_cache_size"`
	TreeCacheSize   int `toml:"tree_cache_size"`
}

// RepoConfig describes repository-wide settings.
type RepoConfig struct {
	UpstreamURLs []string       `toml:"upstream_urls"`
	Analysis     AnalysisConfig `toml:"analysis"`
}

// BumpConfig controls BumpAnalyzer behavior.
type BumpConfig struct {
	FeaturesAlwaysBumpMinor bool   `toml:"features_always_bump_minor"`
	BreakingAlwaysBumpMajor bool   `toml:"breaking_always_bump_major"`
	InitialTag              string `toml:"initial_tag"`
	BumpType                string `toml:"bump_type"`
}

// ChangelogConfig controls ChangelogBuilder behavior.
type ChangelogConfig struct {
	Header                  string `toml:"header"`
	Body                    string `toml:"body"`
	Footer                  string `toml:"footer"`
	Trim                    bool   `toml:"trim"`
	Output                  string `toml:"output"`
	ConventionalCommits     bool   `toml:"conventional_commits"`
	ProtectBreakingCommits  bool   `toml:"protect_breaking_commits"`
	FilterUnconventional    bool   `toml:"filter_unconventional"`
	SortCommits             string `toml:"sort_commits"`
	IncludeBreakingSection  bool   `toml:"include_breaking_section"`
	IncludeContributors     bool   `toml:"include_contributors"`
	IncludeStatistics       bool   `toml:"include_statistics"`
}

// CommitAttributionConfig controls ScopeMatcher construction.
type CommitAttributionConfig struct {
	Strategy      string            `toml:"strategy"`
	ScopeMatching string            `toml:"scope_matching"`
	ScopeMappings map[string]string `toml:"scope_mappings"`
	PackageScopes map[string]string `toml:"package_scopes"`
}

// NpmProjectConfig and CargoProjectConfig carry ecosystem-specific knobs.
type NpmProjectConfig struct {
	InternalDepProtocol       string `toml:"internal_dep_protocol"`
	StrictDependencyValidation bool  `toml:"strict_dependency_validation"`
}

type CargoProjectConfig struct {
	Publish bool `toml:"publish"`
}

// ProjectConfig controls project discovery.
type ProjectConfig struct {
	Ignore []string            `toml:"ignore"`
	Npm    NpmProjectConfig    `toml:"npm"`
	Cargo  CargoProjectConfig  `toml:"cargo"`
}

// Config is the full engine configuration.
type Config struct {
	Repo              RepoConfig               `toml:"repo"`
	Bump              BumpConfig               `toml:"bump"`
	Changelog         ChangelogConfig          `toml:"changelog"`
	CommitAttribution CommitAttributionConfig  `toml:"commit_attribution"`
	Project           ProjectConfig            `toml:"project"`
}

// Load decodes the embedded default.toml, then (if present) decodes
// repoRoot/belaf/config.toml into the same struct, so any field the user
// overlay omits keeps its default value.
func Load(repoRoot string) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(defaultTOML, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing embedded default config: %w", err)
	}

	overlayPath := repoRoot + "/" + Path
	data, err := os.ReadFile(overlayPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading %s: %w", overlayPath, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", overlayPath, err)
	}
	return cfg, nil
}

// Default returns the configuration decoded from the embedded default.toml
// alone, with no repository overlay — used by `belaf init` to seed a new
// repository's belaf/config.toml.
func Default() Config {
	var cfg Config
	_ = toml.Unmarshal(defaultTOML, &cfg)
	return cfg
}

// Marshal renders cfg back to TOML text, used when writing a seeded
// belaf/config.toml during bootstrap.
func Marshal(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
