package cache

import (
	"bytes"
	"io/ioutil"

	"webinsights/filestore"

	log "github.com/sirupsen/logrus"
)

// FileCache is a read-if-exists, else-fetch-and-persist cache on top of a
// FileManager. A missing or unreadable entry is a miss, never an error:
// callers fall through to the live source and Put the result back.
type FileCache struct {
	fileManager filestore.FileManager
}

func New(fileManager filestore.FileManager) *FileCache {
	return &FileCache{fileManager: fileManager}
}

// Get returns the cached bytes for key, or ok=false on a miss.
func (c *FileCache) Get(key string) ([]byte, bool) {
	path, fileName := c.fileManager.GetCacheFilePathAndName(key)
	reader, err := c.fileManager.Get(path, fileName)
	if err != nil {
		return nil, false
	}
	defer reader.Close()

	data, err := ioutil.ReadAll(reader)
	if err != nil {
		log.WithError(err).WithField("key", key).Debug("Failed reading cache entry. Treating as miss.")
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Put persists data under key, replacing any existing entry.
func (c *FileCache) Put(key string, data []byte) error {
	path, fileName := c.fileManager.GetCacheFilePathAndName(key)
	return c.fileManager.Create(path, fileName, bytes.NewReader(data))
}
