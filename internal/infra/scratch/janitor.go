// Package scratch owns the shared directory that export and graph commands write
// their attachments into.
package scratch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ErrRecreate means the directory could not be created after the wipe. Writers
// depending on it fail until the next successful run.
var ErrRecreate = errors.New("failed to recreate scratch directory")

const dirPerm = 0o755

// Janitor wipes and recreates the scratch directory. It does not coordinate with
// writers: a file written between the delete and the create can be lost.
type Janitor struct {
	dir    string
	logger *logrus.Entry
}

func NewJanitor(dir string, logger *logrus.Entry) *Janitor {
	return &Janitor{dir: dir, logger: logger.WithField("dir", dir)}
}

// RunTick deletes the directory (best effort) and recreates it (mandatory).
func (j *Janitor) RunTick(_ context.Context) error {
	if err := os.RemoveAll(j.dir); err != nil {
		j.logger.WithError(err).Warn("Failed to clear scratch directory, recreating anyway")
	}

	if err := os.MkdirAll(j.dir, dirPerm); err != nil {
		err = fmt.Errorf("%w: %w", ErrRecreate, err)
		j.logger.WithError(err).Error("Scratch directory is missing, attachment commands will fail until the next run")
		return err
	}

	j.logger.Info("Scratch directory cleaned")
	return nil
}
