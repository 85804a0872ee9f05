package version

import (
	"encoding/json"
	"log"
	"os"
)

const fallback = "0.1.0"

type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date,omitempty"`
}

// Load reads version.json from the working directory, falling back to a
// static version when absent or malformed.
func Load() Info {
	data, err := os.ReadFile("version.json")
	if err != nil {
		return Info{Version: fallback}
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		log.Printf("warning: could not parse version.json: %v", err)
		return Info{Version: fallback}
	}
	if info.Version == "" {
		info.Version = fallback
	}
	return info
}
