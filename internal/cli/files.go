package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/polagram/pkg/dialect"
	"github.com/matzehuels/polagram/pkg/errors"
	"github.com/matzehuels/polagram/pkg/pipeline"
)

// stdio names standard input or output in file arguments.
const stdio = "-"

// readSource reads a diagram file, or standard input for "-".
func readSource(path string) (string, error) {
	if path == stdio {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read standard input")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return string(data), nil
}

// sourceOptions prepares pipeline options for one input file. from forces
// the input dialect; otherwise it is detected.
func sourceOptions(path, from string) (pipeline.Options, error) {
	src, err := readSource(path)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{Source: src}
	if path != stdio {
		opts.Filename = path
	}
	if from != "" {
		f, err := dialect.ParseFormat(from)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Format = f
	}
	return opts, nil
}

// writeOutput writes data to path, or to w when path is empty or "-".
// It reports whether a file was written.
func writeOutput(w io.Writer, data []byte, path string) (bool, error) {
	if path == "" || path == stdio {
		_, err := w.Write(data)
		return false, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, err
		}
	}
	return true, os.WriteFile(path, data, 0644)
}

// viewPath names the output file of one view: <dir>/<base>.<lens><ext>.
func viewPath(dir, input, lensName, format string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"."+lensName+pipeline.Extensions[format])
}
