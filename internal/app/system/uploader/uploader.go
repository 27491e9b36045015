// Package uploader puts files into blob storage with retry on interrupted
// transfers. Only aborted uploads are retried; validation and permission
// failures surface immediately.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/Anaastro/landing-demo/internal/app/system/mediatype"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

const (
	maxAttempts = 3
	backoffStep = 500 * time.Millisecond
)

// Uploader wraps a blob store with naming and retry policy.
type Uploader struct {
	store storage.Store
	log   *zap.Logger

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// New creates an Uploader backed by store.
func New(store storage.Store, log *zap.Logger) *Uploader {
	return &Uploader{
		store: store,
		log:   log,
		sleep: time.Sleep,
	}
}

// Upload stores the file under prefix with a millisecond-timestamp name
// suffix so repeated uploads of the same file never collide. Returns the
// storage path and its public URL.
//
// Interrupted transfers are retried up to three times with a growing
// pause between attempts. The reader is rewound before each retry.
func (u *Uploader) Upload(ctx context.Context, prefix, fileName, contentType string, r io.ReadSeeker) (path, url string, err error) {
	name := mediatype.SanitizeFileName(fileName)
	path = fmt.Sprintf("%s/%d_%s", prefix, time.Now().UnixMilli(), name)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			u.sleep(backoffStep * time.Duration(attempt+1))
			if _, err = r.Seek(0, io.SeekStart); err != nil {
				return "", "", fmt.Errorf("rewind upload: %w", err)
			}
		}

		err = u.store.Put(ctx, path, r, &storage.PutOptions{ContentType: contentType})
		if err == nil {
			return path, u.store.URL(path), nil
		}
		if !isAborted(err) {
			return "", "", err
		}
		u.log.Warn("upload interrupted, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return "", "", fmt.Errorf("upload failed after %d attempts: %w", maxAttempts, err)
}

// URL returns the public URL for a stored path.
func (u *Uploader) URL(path string) string {
	return u.store.URL(path)
}

// Delete removes a stored file.
func (u *Uploader) Delete(ctx context.Context, path string) error {
	return u.store.Delete(ctx, path)
}

// isAborted reports whether an upload error is an interrupted transfer
// worth retrying. Deliberate cancellation is never retried.
func isAborted(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
