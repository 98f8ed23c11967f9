// Package config handles configuration loading, parsing, and validation
// from a YAML file and PORTAL_-prefixed environment variables. Vendor
// credentials are optional here: an integration whose credentials are missing
// still starts and simply reports itself as not configured.
package config
