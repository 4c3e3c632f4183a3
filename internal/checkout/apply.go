package checkout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/kalambet/payctl/internal/atomicfile"
	"github.com/kalambet/payctl/internal/definefile"
)

// Default file locations, relative to the directory payctl runs in.
const (
	DefaultEnvPath      = "../checkout/.env"
	DefaultHtaccessPath = "../.htaccess"
)

// Options selects the routes and the files Apply rewrites.
type Options struct {
	Routes       Routes
	EnvPath      string
	HtaccessPath string
	ConfigPath   string
	Logger       *zap.Logger
}

// Result reports what Apply changed.
type Result struct {
	EnvChanged      bool
	HtaccessChanged bool
}

// Apply validates the routes and then updates, in order, the .env file, the
// .htaccess file and the PAY_PATH / NOTIFY_PATH declarations. Each file is
// backed up to a ".bak" sibling before it is replaced. Apply stops at the
// first failure; files already written stay written.
func Apply(opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var res Result

	if err := opts.Routes.Validate(); err != nil {
		return res, err
	}
	for _, p := range []string{opts.EnvPath, opts.HtaccessPath, opts.ConfigPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return res, fmt.Errorf("file not found: %s", p)
			}
			return res, err
		}
	}

	changed, err := UpdateEnv(opts.EnvPath, opts.Routes)
	if err != nil {
		return res, fmt.Errorf("updating %s: %w", opts.EnvPath, err)
	}
	res.EnvChanged = changed
	log.Debug("env file processed", zap.String("path", opts.EnvPath), zap.Bool("changed", changed))

	changed, err = UpdateHtaccess(opts.HtaccessPath, opts.Routes)
	if err != nil {
		return res, fmt.Errorf("updating %s: %w", opts.HtaccessPath, err)
	}
	res.HtaccessChanged = changed
	log.Debug("htaccess processed", zap.String("path", opts.HtaccessPath), zap.Bool("changed", changed))

	if err := UpdateConfig(opts.ConfigPath, opts.Routes); err != nil {
		return res, fmt.Errorf("updating %s: %w", opts.ConfigPath, err)
	}
	log.Debug("config declarations saved", zap.String("path", opts.ConfigPath))

	return res, nil
}

// UpdateEnv sets the success and cancel paths in the .env file at path.
func UpdateEnv(path string, r Routes) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	updated := setEnvValues(string(data), []envAssignment{
		{key: envSuccessKey, value: r.SuccessPath()},
		{key: envCancelKey, value: r.CancelPath()},
	})
	if updated == string(data) {
		return false, nil
	}
	return true, replace(path, updated)
}

// UpdateHtaccess inserts the rewrite rules into the .htaccess file at path.
func UpdateHtaccess(path string, r Routes) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	updated, changed, err := insertRewriteRules(string(data), r)
	if err != nil || !changed {
		return false, err
	}
	return true, replace(path, updated)
}

// UpdateConfig writes PAY_PATH and NOTIFY_PATH into the declaration file.
func UpdateConfig(path string, r Routes) error {
	doc, err := definefile.Open(path)
	if err != nil {
		return err
	}
	if err := doc.SetString("PAY_PATH", r.PayPath()); err != nil {
		return err
	}
	if err := doc.SetString("NOTIFY_PATH", r.NotifyPath()); err != nil {
		return err
	}
	return doc.Save()
}

func replace(path, content string) error {
	if err := atomicfile.Backup(path, path+".bak"); err != nil {
		return err
	}
	return atomicfile.WriteFile(path, []byte(content), atomicfile.Mode(path, 0o644))
}
