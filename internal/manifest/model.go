package manifest

import "strings"

const (
	// SchemaVersion is the fixed output shape; forced/automatic are always emitted.
	SchemaVersion = 2

	// RequiredAndroidVersion is written verbatim into every manifest.
	RequiredAndroidVersion = "21"

	DefaultFileSize = "1.0MB"
)

// UpdateRecord is a single release entry. Field order matches the document
// consumed by installed clients.
type UpdateRecord struct {
	Description string   `json:"description"`
	FileSize    string   `json:"file_size"`
	Forced      bool     `json:"forced"`
	Automatic   bool     `json:"automatic"`
	ScriptURL   string   `json:"script_url,omitempty"`
	APKURL      string   `json:"apk_url,omitempty"`
	Changelog   []string `json:"changelog,omitempty"`
}

func (r UpdateRecord) clone() UpdateRecord {
	if r.Changelog != nil {
		r.Changelog = append([]string(nil), r.Changelog...)
	}
	return r
}

// Manifest is the full published document.
type Manifest struct {
	LatestVersion          string                  `json:"latest_version"`
	Updates                map[string]UpdateRecord `json:"updates"`
	RequiredAndroidVersion string                  `json:"required_android_version"`
}

// Clone returns a deep copy so snapshots cannot alias live state.
func (m Manifest) Clone() Manifest {
	out := Manifest{
		LatestVersion:          m.LatestVersion,
		Updates:                make(map[string]UpdateRecord, len(m.Updates)),
		RequiredAndroidVersion: m.RequiredAndroidVersion,
	}
	for k, v := range m.Updates {
		out.Updates[k] = v.clone()
	}
	return out
}

// Fields is the raw user input for an upsert. Empty strings select defaults.
type Fields struct {
	Description string
	FileSize    string
	ScriptURL   string
	APKURL      string
	// Changelog is free text, one item per line.
	Changelog string
	Forced    bool
	Automatic bool
}

// Record builds the stored record for version from f.
func (f Fields) Record(version string) UpdateRecord {
	r := UpdateRecord{
		Description: strings.TrimSpace(f.Description),
		FileSize:    strings.TrimSpace(f.FileSize),
		Forced:      f.Forced,
		Automatic:   f.Automatic,
		ScriptURL:   strings.TrimSpace(f.ScriptURL),
		APKURL:      strings.TrimSpace(f.APKURL),
		Changelog:   ChangelogLines(f.Changelog),
	}
	if r.Description == "" {
		r.Description = "System update v" + version
	}
	if r.FileSize == "" {
		r.FileSize = DefaultFileSize
	}
	return r
}

// ChangelogLines splits text on newlines, trims each line and drops blanks.
// It returns nil when nothing remains so the field is omitted.
func ChangelogLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
