package config

import "reflect"

// ConfigDiff describes what changed between two configs. Log level and
// analysis thresholds can be hot-reloaded; everything else needs a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// AnalysisChanged is true when any metric threshold band changed.
	// New jobs pick the new thresholds up; running jobs finish on the old.
	AnalysisChanged bool

	// RestartNeeded lists changed sections that only apply after a restart.
	RestartNeeded []string
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Analysis != new.Analysis {
		d.AnalysisChanged = true
	}

	if old.Server.ListenAddr != new.Server.ListenAddr || !reflect.DeepEqual(old.Server.TLS, new.Server.TLS) {
		d.RestartNeeded = append(d.RestartNeeded, "server")
	}
	if old.Store != new.Store {
		d.RestartNeeded = append(d.RestartNeeded, "store")
	}
	if !reflect.DeepEqual(old.Providers, new.Providers) {
		d.RestartNeeded = append(d.RestartNeeded, "providers")
	}
	if old.Jobs != new.Jobs {
		d.RestartNeeded = append(d.RestartNeeded, "jobs")
	}

	return d
}
