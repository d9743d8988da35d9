// Package config holds the crawler configuration: built-in defaults, the
// optional YAML configuration file and the XDG directories used for the
// checkpoint database and the page cache.
package config
