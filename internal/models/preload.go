package models

// PreloadEntry is a single host from the HSTS preload list
type PreloadEntry struct {
	Name              string `json:"name"`
	IncludeSubdomains bool   `json:"include_subdomains"`
}

// PreloadFlags is the per-host value written to the preload plist
type PreloadFlags struct {
	IncludeSubdomains bool `plist:"include_subdomains"`
}
