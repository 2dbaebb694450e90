package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrDatasetMissing is returned when the dataset file does not exist.
// Callers surface it as INSUFFICIENT_DATA rather than a generic failure.
var ErrDatasetMissing = errors.New("analytics dataset missing")

// Dataset is the on-disk shape of the canned analytics data.
type Dataset struct {
	Metrics []MetricPoint `json:"metrics"`
}

// Loader reads the dataset file. Every Load reads from disk -- computed
// responses are cached upstream, the raw dataset never is, so edits to the
// file take effect on the next uncached request.
type Loader struct {
	path string
}

// NewLoader creates a Loader for the dataset at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and parses the dataset. A missing file yields ErrDatasetMissing;
// unparseable content yields a wrapped parse error.
func (l *Loader) Load() (*Dataset, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, l.path)
		}
		return nil, fmt.Errorf("read dataset %q: %w", l.path, err)
	}

	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %q: %w", l.path, err)
	}
	return &ds, nil
}

// ModTime returns the dataset file's last modification time. Used to detect
// staleness of cached responses without loading the file. Returns the zero
// time when the file cannot be stat'd.
func (l *Loader) ModTime() time.Time {
	info, err := os.Stat(l.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Path returns the configured dataset location.
func (l *Loader) Path() string {
	return l.path
}
