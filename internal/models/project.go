package models

// ProjectConfig identifies one update-checkable plugin hosted on GitHub.
type ProjectConfig struct {
	Slug             string `yaml:"slug"`
	ProperFolderName string `yaml:"proper_folder_name,omitempty"`
	APIURL           string `yaml:"api_url"`
	RawURL           string `yaml:"raw_url"`
	GitHubURL        string `yaml:"github_url"`
	ZipURL           string `yaml:"zip_url"`
	SSLVerify        *bool  `yaml:"sslverify,omitempty"`
	Requires         string `yaml:"requires"`
	Tested           string `yaml:"tested"`
	Readme           string `yaml:"readme"`
	AccessToken      string `yaml:"access_token,omitempty"`
	UseTags          bool   `yaml:"use_tags,omitempty"`
	Version          string `yaml:"version,omitempty"`
}

// VerifyTLS defaults to true when sslverify is not set.
func (p *ProjectConfig) VerifyTLS() bool {
	return p.SSLVerify == nil || *p.SSLVerify
}

// Manifest is the content of plugup.yml.
type Manifest struct {
	PluginsDir string          `yaml:"plugins_dir"`
	Reactivate []string        `yaml:"reactivate,omitempty"`
	Projects   []ProjectConfig `yaml:"projects"`
}

// Find returns the project whose slug or proper folder name matches name.
func (m *Manifest) Find(name string) (*ProjectConfig, bool) {
	for i := range m.Projects {
		p := &m.Projects[i]
		if p.Slug == name || (p.ProperFolderName != "" && p.ProperFolderName == name) {
			return p, true
		}
	}
	return nil, false
}
