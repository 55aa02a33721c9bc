package regionfill

import (
	"context"
	"errors"
	"os"
)

// Close removes the backing file unless KeepFile is set. It runs whatever
// the outcome of Fill and Verify was, so callers should defer it right
// after New. Close is idempotent.
func (h *Harness) Close() error {
	if h == nil || !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	if h.cfg.KeepFile {
		return nil
	}

	err := h.opts.fileSystem.Remove(h.path)
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	h.logger.LogCleanup(context.Background(), h.path, err)
	return err
}
