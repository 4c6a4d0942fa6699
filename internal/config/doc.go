// Package config holds textcore's settings and loads them from files and
// the environment.
//
// Settings are resolved in three steps, later steps overriding earlier ones:
//
//  1. Default() values
//  2. a TOML (.toml) or YAML (.yaml, .yml) file given to Load
//  3. TEXTCORE_* environment variables applied by ApplyEnv
//
// Environment variable names map to setting paths by section and camelCase
// key: TEXTCORE_ENGINE_UNDO_LIMIT sets engine.undoLimit and
// TEXTCORE_LOGGING_LEVEL sets logging.level.
//
// Example configuration file:
//
//	[engine]
//	undoLimit = 100
//
//	[diff]
//	algorithm = "heuristic"
//	contextLines = 5
//
//	[theme.colors]
//	keyword = "#ff79c6"
package config
