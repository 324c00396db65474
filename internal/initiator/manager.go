package initiator

import (
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/plugup/internal/globalconfig"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/manifest"
	"github.com/MrSnakeDoc/plugup/internal/utils"
)

type Initiator struct {
	Dir          string
	CacheBackend string
}

func New(dir string) *Initiator {
	return &Initiator{Dir: dir, CacheBackend: globalconfig.BackendFile}
}

// Execute creates plugup.yml in Dir when missing and points the persistent
// config at it.
func (i *Initiator) Execute() error {
	dir := i.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = cwd
	}

	projectsFile := filepath.Join(dir, manifest.FileName)
	if ok, _ := utils.FileExists(projectsFile); !ok {
		if err := utils.CreateFile(projectsFile, []byte(manifest.Template), utils.FileTypeYAML, 0o644); err != nil {
			return err
		}
		logger.Success("Created %s", projectsFile)
	} else {
		logger.Info("Keeping existing %s", projectsFile)
	}

	cfg := &globalconfig.PersistentConfig{
		ProjectsFile: projectsFile,
		CacheBackend: i.CacheBackend,
	}
	return cfg.Save()
}
