package batch

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadInputs reads application payloads from files, directories (their
// .json files, not recursive) and .zip archives. Input names are file names
// without the extension.
func LoadInputs(paths []string) ([]Input, error) {
	var inputs []Input
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("LoadInputs: %w", err)
		}

		if info.IsDir() {
			loaded, err := loadDir(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, loaded...)
			continue
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("LoadInputs: reading %s: %w", p, err)
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".zip":
			loaded, err := ExtractZip(data)
			if err != nil {
				return nil, fmt.Errorf("LoadInputs: %s: %w", p, err)
			}
			inputs = append(inputs, loaded...)
		default:
			inputs = append(inputs, Input{Name: stem(p), Raw: data})
		}
	}
	return inputs, nil
}

func loadDir(dir string) ([]Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadInputs: reading directory %s: %w", dir, err)
	}

	var inputs []Input
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("LoadInputs: reading %s: %w", e.Name(), err)
		}
		inputs = append(inputs, Input{Name: stem(e.Name()), Raw: data})
	}
	return inputs, nil
}

// ExtractZip returns the .json members of a zip archive, sorted by name.
// Directory structure inside the archive is ignored.
func ExtractZip(data []byte) ([]Input, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ExtractZip: %w", err)
	}

	var inputs []Input
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".json") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("ExtractZip: opening %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("ExtractZip: reading %s: %w", f.Name, err)
		}
		inputs = append(inputs, Input{Name: stem(f.Name), Raw: content})
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Name < inputs[j].Name })
	return inputs, nil
}

func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
