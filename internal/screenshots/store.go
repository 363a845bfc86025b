// internal/screenshots/store.go
package screenshots

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/officialprakashkumarsingh/render/api/schemas"
)

// Store persists screenshots to a directory on the local filesystem. Files
// are served back by the HTTP layer under /screenshots/<name>.
type Store struct {
	dir    string
	logger *zap.Logger
}

var _ schemas.ScreenshotStore = (*Store)(nil)

// NewStore creates the store, ensuring the target directory exists.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory %q: %w", dir, err)
	}
	return &Store{
		dir:    dir,
		logger: logger.Named("screenshot_store"),
	}, nil
}

// Dir returns the directory screenshots are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the image bytes under the given name. The name is reduced to
// its base component so a crafted name cannot escape the directory.
func (s *Store) Save(name string, data []byte) error {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid screenshot name %q", name)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot %q: %w", name, err)
	}

	s.logger.Debug("Screenshot persisted.", zap.String("name", name), zap.Int("bytes", len(data)))
	return nil
}

// GenerateName returns a collision-resistant file name derived from the
// current time.
func GenerateName() string {
	return fmt.Sprintf("%d-%s.png", time.Now().UnixNano(), uuid.NewString()[:8])
}
