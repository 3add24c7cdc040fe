package feed

import (
	"errors"
	"fmt"
)

// ErrNoFeedIdentity is returned when no feed id could be found or created.
var ErrNoFeedIdentity = errors.New("cannot fetch feed ID")

// ArtifactError reports a filesystem failure while producing the artifact.
type ArtifactError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("feed artifact %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}
