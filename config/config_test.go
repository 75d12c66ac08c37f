package config

import "testing"

func TestParseTokens(t *testing.T) {
	f := parseTokens("dynamic_corridor_bias,ga_diversity,!path_cache,unknown_flag")
	if !f.DynamicCorridorBias {
		t.Error("expected dynamic_corridor_bias enabled")
	}
	if !f.GADiversity {
		t.Error("expected ga_diversity enabled")
	}
	if f.PathCache {
		t.Error("expected path_cache disabled")
	}
	if f.HTFuturePenalty {
		t.Error("expected ht_future_penalty to default false")
	}
}

func TestParseTokensEmpty(t *testing.T) {
	f := parseTokens("")
	if f != (Features{}) {
		t.Errorf("expected zero Features, got %+v", f)
	}
}

func TestParseTokensWhitespace(t *testing.T) {
	f := parseTokens(" ga_diversity , !ht_future_penalty ")
	if !f.GADiversity || f.HTFuturePenalty {
		t.Errorf("whitespace should be trimmed, got %+v", f)
	}
}

func TestLoadFeaturesOverridesWinOverEnv(t *testing.T) {
	t.Setenv("JOB_PLANNER_FEATURES", "ga_diversity")
	f := LoadFeatures(Override{"ga_diversity": false, "path_cache": true})
	if f.GADiversity {
		t.Error("override should disable ga_diversity despite env enabling it")
	}
	if !f.PathCache {
		t.Error("override should enable path_cache")
	}
}
