package headerindex

// customConfigThreshold is the entry count above which the last entry is
// assumed to be a user-added configuration and wins over platform matching.
const customConfigThreshold = 3

// PlatformLabel maps a GOOS value to the configuration name the editor
// generates for that platform. Unknown platforms map to "".
func PlatformLabel(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Mac"
	case "windows":
		return "Win32"
	default:
		return ""
	}
}

// SelectConfigIndex picks the configuration entry to use from a document.
//
// A valid override always wins. Otherwise lists longer than three entries
// resolve to their last entry, and shorter lists resolve to the first entry
// named after the running platform, falling back to the last entry. An empty
// list yields -1.
func SelectConfigIndex(configurations []Configuration, override *int, goos string) int {
	n := len(configurations)
	if override != nil && *override >= 0 && *override < n {
		return *override
	}
	if n > customConfigThreshold {
		return n - 1
	}

	label := PlatformLabel(goos)
	for i, c := range configurations {
		if c.Name == label {
			return i
		}
	}

	return n - 1
}
