package app

import "time"

// ── Context events ────────────────────────────────────────────────────────────

// ContextInitializing fires at the start of Initialize, after the
// configuration manager and config modules are in the store.
type ContextInitializing struct {
	ConfigSourcesCount  int
	ActiveProfilesCount int
	Timestamp           time.Time
}

// ContextInitialized fires once the container is initialized and every
// provider has booted.
type ContextInitialized struct {
	ConfigSourcesCount  int
	ActiveProfilesCount int
	Timestamp           time.Time
}

// ProfileActivated fires for each profile activated by Build or ActivateProfile.
type ProfileActivated struct {
	ProfileName     string
	PropertiesCount int
	Timestamp       time.Time
}

// ConfigurationChanged fires after SetConfig. HadOldValue is false when the
// key did not resolve before the change.
type ConfigurationChanged struct {
	Key         string
	OldValue    string
	HadOldValue bool
	NewValue    string
	Timestamp   time.Time
}

func (ContextInitializing) EventName() string  { return "ContextInitializing" }
func (ContextInitialized) EventName() string   { return "ContextInitialized" }
func (ProfileActivated) EventName() string     { return "ProfileActivated" }
func (ConfigurationChanged) EventName() string { return "ConfigurationChanged" }
