package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
)

// DefaultArtifactPath is where the artifact lives when MODEL_PATH is unset,
// relative to the working directory.
const DefaultArtifactPath = "models/cyclone_model.onnx"

// ResolvePath returns the override when set, else the default artifact location.
func ResolvePath(override string) string {
	if override != "" {
		return override
	}
	return DefaultArtifactPath
}

// Cache deserializes the model artifact at most once per process and serves
// the handle to all callers. The first Load outcome, handle or error, is
// memoized for the remainder of the process: a missing artifact keeps failing
// with the same NotFoundError even if the file appears later, and the handle
// never observes on-disk changes. Safe for concurrent use.
type Cache struct {
	path string
	open func(path string) (Classifier, string, error)

	once   sync.Once
	clf    Classifier
	kind   string
	err    error
	loaded atomic.Bool
}

// NewCache creates a cache for the artifact at path. Nothing is read until
// the first Load.
func NewCache(path string) *Cache {
	return &Cache{path: path, open: openArtifact}
}

// Path returns the resolved artifact location.
func (c *Cache) Path() string { return c.path }

// Load returns the cached handle, deserializing the artifact on first call.
// Concurrent first calls result in exactly one deserialization; every caller
// observes the identical handle or the identical error.
func (c *Cache) Load() (Classifier, error) {
	c.once.Do(func() {
		if _, statErr := os.Stat(c.path); statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				c.err = &NotFoundError{Path: c.path}
				return
			}
			c.err = &LoadError{Path: c.path, Err: statErr}
			return
		}
		c.clf, c.kind, c.err = c.open(c.path)
		if c.err == nil {
			c.loaded.Store(true)
		}
	})
	return c.clf, c.err
}

// Loaded reports whether a handle is cached. It never triggers a load.
func (c *Cache) Loaded() bool { return c.loaded.Load() }

// Describe returns metadata about the loaded model, triggering a load if none
// has happened yet.
func (c *Cache) Describe() (domain.ModelInfo, error) {
	clf, err := c.Load()
	if err != nil {
		return domain.ModelInfo{}, err
	}
	_, probabilistic := clf.(ProbabilisticClassifier)
	return domain.ModelInfo{
		Path:          c.path,
		Kind:          c.kind,
		Probabilistic: probabilistic,
		FeatureOrder:  domain.FeatureOrder,
	}, nil
}

// openArtifact dispatches on the artifact's file extension.
func openArtifact(path string) (Classifier, string, error) {
	switch ext := filepath.Ext(path); ext {
	case ".onnx":
		clf, err := openONNX(path)
		if err != nil {
			return nil, "", &LoadError{Path: path, Err: err}
		}
		return clf, KindONNX, nil
	case ".json":
		clf, err := loadTree(path)
		if err != nil {
			return nil, "", &LoadError{Path: path, Err: err}
		}
		return clf, KindTree, nil
	default:
		return nil, "", &LoadError{Path: path, Err: fmt.Errorf("unsupported artifact format %q", ext)}
	}
}
