// Package env handles variables for hitmatch suites.
//
// It provides functionality for:
//   - Loading .env files
//   - Variable interpolation using {{variable}} syntax
//   - Built-in functions such as {{uuid()}} and {{timestamp()}}
//   - OS environment lookups with {{$NAME}}
//   - Values captured from earlier checks, addressed as {{check.name}}
package env
