// Package config resolves the planner's feature flags from the
// JOB_PLANNER_FEATURES environment variable plus explicit per-instance
// overrides (§6, §9 "Dynamic config dictionary -> enum").
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Features is the fixed record of planner feature flags. Environment
// parsing happens once, at planner construction.
type Features struct {
	DynamicCorridorBias bool
	GADiversity         bool
	HTFuturePenalty     bool
	PathCache           bool
}

const envVar = "JOB_PLANNER_FEATURES"

// Override lets a caller force a named flag on or off regardless of
// what the environment says; a nil map means "no overrides".
type Override = map[string]bool

// LoadFeatures reads JOB_PLANNER_FEATURES, applies overrides, and
// returns the resolved Features record. It optionally loads a local
// .env file first (ignoring a missing file, same as a bare `export`
// never having run) so JOB_PLANNER_FEATURES can be seeded for local
// development without a shell export.
func LoadFeatures(overrides Override) Features {
	_ = godotenv.Load()

	f := parseTokens(os.Getenv(envVar))
	for name, enabled := range overrides {
		setFlag(&f, name, enabled)
	}
	return f
}

func parseTokens(raw string) Features {
	var f Features
	if raw == "" {
		return f
	}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		enabled := true
		if strings.HasPrefix(tok, "!") {
			enabled = false
			tok = tok[1:]
		}
		setFlag(&f, tok, enabled)
	}
	return f
}

func setFlag(f *Features, name string, enabled bool) {
	switch name {
	case "dynamic_corridor_bias":
		f.DynamicCorridorBias = enabled
	case "ga_diversity":
		f.GADiversity = enabled
	case "ht_future_penalty":
		f.HTFuturePenalty = enabled
	case "path_cache":
		f.PathCache = enabled
	default:
		// Unknown tokens are ignored (§6).
	}
}
