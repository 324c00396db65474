package config

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/utils"
)

type requiredParam struct {
	name  string
	value func(p *models.ProjectConfig) string
}

var requiredParams = []requiredParam{
	{"slug", func(p *models.ProjectConfig) string { return p.Slug }},
	{"api_url", func(p *models.ProjectConfig) string { return p.APIURL }},
	{"raw_url", func(p *models.ProjectConfig) string { return p.RawURL }},
	{"github_url", func(p *models.ProjectConfig) string { return p.GitHubURL }},
	{"zip_url", func(p *models.ProjectConfig) string { return p.ZipURL }},
	{"requires", func(p *models.ProjectConfig) string { return p.Requires }},
	{"tested", func(p *models.ProjectConfig) string { return p.Tested }},
	{"readme", func(p *models.ProjectConfig) string { return p.Readme }},
}

// MissingParams lists every required param that is empty, in declaration order.
func MissingParams(p *models.ProjectConfig) []string {
	missing := make([]string, 0)
	for _, rp := range requiredParams {
		if strings.TrimSpace(rp.value(p)) == "" {
			missing = append(missing, rp.name)
		}
	}
	return missing
}

// ValidateProject returns a config error naming all missing params, or nil.
func ValidateProject(p *models.ProjectConfig) error {
	if missing := MissingParams(p); len(missing) > 0 {
		return errs.ConfigError(p.Slug, missing)
	}
	return nil
}

// NormalizeProject validates p and returns a copy with defaults applied.
// With an access token the zip URL is rewritten to the API zipball endpoint,
// which is the only one that serves private repositories.
func NormalizeProject(p models.ProjectConfig) (models.ProjectConfig, error) {
	if err := ValidateProject(&p); err != nil {
		return p, err
	}

	if p.ProperFolderName == "" {
		p.ProperFolderName = DefaultFolderName(p.Slug)
	}

	if p.AccessToken != "" {
		zipURL, err := privateZipURL(p.ZipURL, p.AccessToken)
		if err != nil {
			return p, fmt.Errorf("invalid zip_url for %s: %w", p.Slug, err)
		}
		p.ZipURL = zipURL
	}

	return p, nil
}

// DefaultFolderName derives the install folder from a slug such as
// "my-plugin/my-plugin.php".
func DefaultFolderName(slug string) string {
	dir := path.Dir(slug)
	if dir != "." && dir != "/" {
		return dir
	}
	base := path.Base(slug)
	return strings.TrimSuffix(base, path.Ext(base))
}

func privateZipURL(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Path == "" {
		return "", fmt.Errorf("expected an absolute URL, got %q", raw)
	}
	if u.Host == "api.github.com" {
		return utils.AddQueryArg(raw, "access_token", token)
	}
	rewritten := u.Scheme + "://api.github.com/repos" + u.Path
	return utils.AddQueryArg(rewritten, "access_token", token)
}
