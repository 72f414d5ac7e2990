// Package config handles configuration loading for mapsapp.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. Fields missing from the file keep their defaults.
//
// # Configuration File
//
// Location (in order):
//
//  1. Path from MAPSAPP_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/mapsapp/config.yaml (~/.config when unset)
//
// A missing default file is not an error; a missing MAPSAPP_CONFIG file is.
// Files ending in .toml are decoded as TOML.
//
// # Example
//
//	storage:
//	  driver: sqlite          # or memory
//	  path: "${HOME}/.local/share/mapsapp/mapsapp.db"
//	  prefix: mapsapp_v1_
//
//	logging:
//	  level: info             # debug, info, warn, error
//	  format: text            # text or json
//
//	map:
//	  center_lat: 55.7558
//	  center_lng: 37.6176
//	  zoom: 13
//	  geolocation_timeout: 7s
//
// # Environment Variable Expansion
//
// Only the ${VAR_NAME} form is expanded. Unset variables expand to the empty
// string.
package config
