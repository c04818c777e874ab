package manifest

// Demo returns the sample release set used to try the console out.
func Demo() map[string]UpdateRecord {
	return map[string]UpdateRecord{
		"1.1": {
			ScriptURL:   "https://raw.githubusercontent.com/alltechdev/alltech.dev/main/update_script_v1.sh",
			Description: "Initial system update with security patches",
			FileSize:    "1.2MB",
			Changelog: []string{
				"Security patches",
				"Performance improvements",
				"Bug fixes",
			},
		},
		"1.2": {
			ScriptURL:   "https://raw.githubusercontent.com/alltechdev/alltech.dev/main/update_script_v2.sh",
			APKURL:      "https://github.com/alltechdev/alltech.dev/releases/download/v1.2/app.apk",
			Description: "Major update with new features",
			FileSize:    "2.1MB",
			Changelog: []string{
				"New APK installation support",
				"Improved UI",
				"Enhanced security",
				"Better error handling",
			},
		},
	}
}
