package filestore

import (
	"io"
)

type FileManager interface {
	Create(dir, fileName string, reader io.Reader) error
	Get(path, fileName string) (io.ReadCloser, error)
	GetJobDataPath(jobName string) string
	GetCacheFilePathAndName(key string) (string, string)
}
