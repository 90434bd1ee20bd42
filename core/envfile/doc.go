// Package envfile reads KEY=VALUE secret files into plain maps.
//
// The format is deliberately small: one pair per line, blank lines and
// lines starting with '#' are ignored, the line is split on the first '='
// and both sides are trimmed. There is no quoting or escaping, so a value
// may itself contain '=' or '#'. Lines without '=' are skipped.
//
// A missing file is not an error; it simply contributes no values:
//
//	values, err := envfile.Read("/run/secrets/smtp.env")
//	if err != nil {
//		return err // file exists but could not be read
//	}
//
// Nothing in this package touches the process environment. Callers merge
// the returned map with other sources themselves (see package config).
//
// ReadDotenv is available for developer .env files that use the richer
// dotenv dialect (quotes, export prefixes, inline comments).
package envfile
