package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// readJSON decodes path into target. A missing file leaves target untouched.
func readJSON(path string, target interface{}) (err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = nil
			return err
		}
		err = errors.Wrapf(err, "failed to read %s", path)
		return err
	}

	if len(data) == 0 {
		return err
	}

	err = json.Unmarshal(data, target)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse %s", path)
		return err
	}

	return err
}

// writeJSON replaces path with the indented encoding of value.
func writeJSON(path string, value interface{}) (err error) {
	var data []byte
	data, err = json.MarshalIndent(value, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal records")
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory for %s", path)
		return err
	}

	tmp := path + ".tmp"
	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write %s", tmp)
		return err
	}

	err = os.Rename(tmp, path)
	if err != nil {
		err = errors.Wrapf(err, "failed to replace %s", path)
		return err
	}

	return err
}
