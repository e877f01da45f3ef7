package organizer

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"log/slog"

	"golang.org/x/sys/unix"

	"shelfarr/internal/logging"
	"shelfarr/internal/services"
)

// moveFile renames source to target, falling back to a verified copy plus
// delete when the rename crosses filesystems.
func moveFile(logger *slog.Logger, source, target string) error {
	renameErr := os.Rename(source, target)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, unix.EXDEV) {
		return copyAndRemove(logger, source, target)
	}
	return services.Wrap(services.ErrTransient, "organizer", "move file", "failed to move file into library", renameErr)
}

// copyAndRemove is the cross-device move fallback: verified copy, then
// best-effort removal of the source.
func copyAndRemove(logger *slog.Logger, source, target string) error {
	if copyErr := copyFile(source, target); copyErr != nil {
		return services.Wrap(services.ErrTransient, "organizer", "copy file", "cross-device copy failed", copyErr)
	}
	if err := os.Remove(source); err != nil {
		logger.Warn("failed to remove source file after copy",
			logging.String(logging.FieldPath, source),
			logging.Error(err),
		)
	}
	return nil
}

// copyFile copies a file from src to dst, verifying both size and content hash.
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	// Hash source while reading, hash destination while writing
	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}
