// Package confloader loads honeymesh configuration.
//
// Sources are merged with koanf in increasing priority:
//
//  1. Built-in defaults (config.Default)
//  2. A YAML configuration file
//  3. HONEYMESH_ environment variables, "__" separating nesting levels
//
// Watcher reports edits to the configuration file so the server can
// re-apply settings that are safe to change at runtime, such as log.level.
package confloader
