package manifest

// CheckResult is what a client running Installed would be told.
type CheckResult struct {
	Installed       string        `json:"installed"`
	LatestVersion   string        `json:"latest_version"`
	UpdateAvailable bool          `json:"update_available"`
	Forced          bool          `json:"forced"`
	Automatic       bool          `json:"automatic"`
	Update          *UpdateRecord `json:"update,omitempty"`
}

// Check simulates an installed client polling m. An update is offered when
// the manifest's latest version parses higher than installed, or when
// installed has no numeric value at all. Comparison uses the same numeric
// parse as LatestVersion.
func (m Manifest) Check(installed string) CheckResult {
	res := CheckResult{Installed: installed, LatestVersion: m.LatestVersion}
	if m.LatestVersion == "" {
		return res
	}

	rec, ok := m.Updates[m.LatestVersion]
	if !ok {
		return res
	}

	latest, latestOK := ParseVersionNumber(m.LatestVersion)
	current, currentOK := ParseVersionNumber(installed)

	switch {
	case !currentOK:
		res.UpdateAvailable = true
	case latestOK && latest > current:
		res.UpdateAvailable = true
	}

	if res.UpdateAvailable {
		r := rec.clone()
		res.Update = &r
		res.Forced = r.Forced
		res.Automatic = r.Automatic
	}
	return res
}
