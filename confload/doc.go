// Package confload loads facade settings from YAML files and the environment.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. Defaults (see [Default])
//  2. Configuration file (YAML)
//  3. Environment variables with the WEBSTORAGE_ prefix
//
// Environment variable names map onto keys by dropping the prefix, lowercasing
// and turning underscores into dots: WEBSTORAGE_EXPIRY_MONTHS sets expiry.months.
// WEBSTORAGE_FALLBACK_GRANTS takes a comma or space separated list.
//
// A file looks like:
//
//	backend: localStorage
//	expiry:
//	  months: 6
//	fallback:
//	  enabled: true
//	  grants: [theme, lang]
//	dynamo:
//	  table: webstorage_items
//	  namespace: default
//	  shards: 1
//	badger:
//	  dir: /var/lib/app/storage
package confload
