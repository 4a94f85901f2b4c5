package headerindex

import (
	"errors"
	"sort"
	"time"
)

// Entry is one completion candidate.
type Entry struct {
	// Label is the header path relative to its search directory, using forward slashes.
	Label string `json:"label"`
	// Path is the absolute path of the header file.
	Path string `json:"path"`
	// Dir is the resolved search directory the header was found under.
	Dir  string `json:"dir"`
	Root string `json:"root"`
}

// Report summarizes a Load run. Errors holds every isolated unit failure.
type Report struct {
	Roots       int     `json:"roots"`
	ConfigFiles int     `json:"configFiles"`
	Directories int     `json:"directories"`
	Errors      []error `json:"-"`
}

// Err joins the unit failures of the run, or returns nil when there were none.
func (r Report) Err() error {
	return errors.Join(r.Errors...)
}

// Snapshot is an immutable, complete result of one Load run.
type Snapshot struct {
	ID       uint64    `json:"id"`
	LoadedAt time.Time `json:"loadedAt"`
	Entries  []Entry   `json:"entries"`
	Report   Report    `json:"report"`
}

var emptySnapshot = &Snapshot{}

// Labels returns the completion labels of the snapshot in index order.
func (s *Snapshot) Labels() []string {
	labels := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		labels[i] = e.Label
	}
	return labels
}

// SortedLabels returns the labels sorted, for stable output.
func (s *Snapshot) SortedLabels() []string {
	labels := s.Labels()
	sort.Strings(labels)
	return labels
}
