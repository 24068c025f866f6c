package scenario

import "fmt"

// LoadError reports a scenario file that could not be read,
// parsed, validated or resolved. The run skips the file and
// continues.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("scenario file %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
