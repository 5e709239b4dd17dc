package logger

import (
	"fmt"
	"os"
)

// rotatingFile is a size-rotated log file. When a write would push the
// file past maxBytes, the current file is renamed to <path>.1 and older
// backups shift up to <path>.<backups>, after which the oldest is dropped.
// Not safe for concurrent use; callers hold the package mutex.
type rotatingFile struct {
	path     string
	maxBytes int64
	backups  int
	f        *os.File
	size     int64
}

func newRotatingFile(path string, maxBytes int64, backups int) (*rotatingFile, error) {
	rf := &rotatingFile{path: path, maxBytes: maxBytes, backups: backups}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	f, err := os.OpenFile(rf.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	rf.f = f
	rf.size = info.Size()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	if rf.f == nil {
		return 0, os.ErrClosed
	}
	if rf.size+int64(len(p)) > rf.maxBytes {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := rf.f.Write(p)
	rf.size += int64(n)
	return n, err
}

func (rf *rotatingFile) rotate() error {
	rf.f.Close()
	rf.f = nil

	// Shift backups: .4 -> .5, ..., .1 -> .2, current -> .1
	os.Remove(backupName(rf.path, rf.backups))
	for i := rf.backups - 1; i >= 1; i-- {
		os.Rename(backupName(rf.path, i), backupName(rf.path, i+1))
	}
	if err := os.Rename(rf.path, backupName(rf.path, 1)); err != nil && !os.IsNotExist(err) {
		return err
	}

	return rf.open()
}

func (rf *rotatingFile) close() {
	if rf.f != nil {
		rf.f.Close()
		rf.f = nil
	}
}

func backupName(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}
