package mdpress

import "os"

// Result holds the outcome of one conversion. Metrics are populated for
// every phase reached even when Convert returns an error; PDF is non-nil
// only on success.
type Result struct {
	PDF     []byte
	Metrics Metrics
}

// Len returns the PDF size in bytes.
func (r *Result) Len() int {
	return len(r.PDF)
}

// WriteToFile writes the PDF to path with 0644 permissions.
func (r *Result) WriteToFile(path string) error {
	return os.WriteFile(path, r.PDF, 0o644)
}
