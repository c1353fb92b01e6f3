package hooks

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Appends every entry to a log file
type File struct {
	lock *sync.Mutex
	file *os.File
}

func (hook *File) Fire(entry *logrus.Entry) error {
	serialized, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	hook.lock.Lock()
	defer hook.lock.Unlock()
	_, err = hook.file.Write(serialized)
	return err
}

func (hook *File) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Close the underlying file
func (hook *File) Close() error {
	return hook.file.Close()
}

// Opens path for appending, creating it if needed
func NewFileHook(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &File{
		lock: &sync.Mutex{},
		file: f,
	}, nil
}
