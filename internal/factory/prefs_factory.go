package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/adapters/prefs"
	"github.com/vesper-voice/vesper/internal/config"
)

// PrefsFactory creates preference stores based on configuration
type PrefsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPrefsFactory creates a new preference store factory
func NewPrefsFactory(cfg *config.Config, logger *zap.Logger) *PrefsFactory {
	return &PrefsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePreferenceStore creates a preference store based on the configuration
func (f *PrefsFactory) CreatePreferenceStore() (prefs.Store, error) {
	storeType := f.cfg.GetString("prefs.type")

	switch storeType {
	case "sqlite":
		sqlitePath := f.cfg.GetString("prefs.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return prefs.NewSQLiteStore(sqlitePath, f.logger)
	case "mysql":
		mysqlDSN := f.cfg.GetString("prefs.mysql_dsn")
		return prefs.NewMySQLStore(mysqlDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported preference store type: %s", storeType)
	}
}
