package disk

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"webinsights/filestore"

	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*DiskDriver)(nil)

type DiskDriver struct {
	// This can be used as namespace
	// to differentiate files across multiple instances of DiskDriver
	// Analogus to bucket name
	baseDir string
}

func New(baseDir string) *DiskDriver {
	return &DiskDriver{baseDir: baseDir}
}

func MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (dd *DiskDriver) Create(path, fileName string, reader io.Reader) error {
	err := MkdirAll(path)
	if err != nil {
		log.WithError(err).Errorln("Failed to create dir")
		return err
	}

	file, err := os.Create(filepath.Join(path, fileName))
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, reader)
	return err
}

// Get opens a file in read only mode.
// Caller should take care of closing the returned io.ReadCloser.
func (dd *DiskDriver) Get(path, fileName string) (io.ReadCloser, error) {
	log.WithFields(log.Fields{
		"Path":     path,
		"FileName": fileName,
	}).Debug("DiskDriver Opening file")

	return os.Open(filepath.Join(path, fileName))
}

func (dd *DiskDriver) GetJobDataPath(jobName string) string {
	return filepath.Join(dd.baseDir, jobName)
}

func (dd *DiskDriver) GetCacheFilePathAndName(key string) (string, string) {
	// Keys are flat names. Guard against path separators sneaking in.
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(dd.baseDir, "cache"), key + ".json"
}
