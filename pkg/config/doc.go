// Package config holds environment-driven configuration structs shared by
// the command entry points. Values are loaded with cleanenv from RBAC_PG_*
// variables and carry defaults suitable for local development.
package config
