package domain

import "path/filepath"

const (
	// KilnDirName is the name of the internal workspace directory.
	KilnDirName = ".kiln"

	// ConfigurationCacheDirName is the name of the configuration cache directory.
	ConfigurationCacheDirName = "configuration-cache"

	// ConfigurationCacheDBName is the file name of the sqlite snapshot database.
	ConfigurationCacheDBName = "configuration-cache.db"

	// SettingsFileName is the name of the settings file at the workspace root.
	SettingsFileName = "kiln.settings.yaml"

	// BuildFileName is the name of the YAML project build script.
	BuildFileName = "kiln.yaml"

	// HCLBuildFileName is the name of the HCL project build script.
	HCLBuildFileName = "kiln.hcl"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultKilnPath returns the internal directory below the given workspace root.
func DefaultKilnPath(root string) string {
	return filepath.Join(root, KilnDirName)
}

// DefaultConfigurationCachePath returns the directory holding file-backed cache entries.
// It joins root, .kiln and configuration-cache.
func DefaultConfigurationCachePath(root string) string {
	return filepath.Join(root, KilnDirName, ConfigurationCacheDirName)
}

// DefaultConfigurationCacheDBPath returns the path of the sqlite snapshot database.
func DefaultConfigurationCacheDBPath(root string) string {
	return filepath.Join(root, KilnDirName, ConfigurationCacheDBName)
}

// IsBuildScript reports whether name is one of the recognised build script file names.
func IsBuildScript(name string) bool {
	return name == BuildFileName || name == HCLBuildFileName
}
