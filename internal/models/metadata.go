package models

// ResolvedMetadata is what the resolver derives from GitHub for one project.
// It is cached for the transient TTL.
type ResolvedMetadata struct {
	NewVersion  string `json:"new_version"`
	LastUpdated string `json:"last_updated,omitempty"`
	Description string `json:"description,omitempty"`
	PluginName  string `json:"plugin_name,omitempty"`
	Author      string `json:"author,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	PackageURL  string `json:"package,omitempty"`
}

// UpdateDescriptor describes one available update. It lives for a single
// update-check cycle.
type UpdateDescriptor struct {
	Slug       string `json:"slug"`
	NewVersion string `json:"new_version"`
	URL        string `json:"url"`
	Package    string `json:"package"`
	OldVersion string `json:"-"`
}

// Outcome records what happened to one project during a check.
type Outcome struct {
	State     State
	Installed string
	Latest    string
	Err       error
}

// UpdateSet mirrors the host's update transient: the installed versions that
// were checked and the updates found for them, keyed by project slug.
type UpdateSet struct {
	Checked  map[string]string
	Response map[string]UpdateDescriptor
	Outcomes map[string]Outcome
}

func NewUpdateSet() *UpdateSet {
	return &UpdateSet{
		Checked:  make(map[string]string),
		Response: make(map[string]UpdateDescriptor),
		Outcomes: make(map[string]Outcome),
	}
}

// PluginInfo feeds the plugin details screen.
type PluginInfo struct {
	Slug         string            `json:"slug"`
	PluginName   string            `json:"plugin_name"`
	Version      string            `json:"version"`
	Author       string            `json:"author"`
	Homepage     string            `json:"homepage"`
	Requires     string            `json:"requires"`
	Tested       string            `json:"tested"`
	Downloaded   int               `json:"downloaded"`
	LastUpdated  string            `json:"last_updated"`
	Sections     map[string]string `json:"sections"`
	DownloadLink string            `json:"download_link"`
}
