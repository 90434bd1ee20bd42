// Package config resolves configuration structs from explicit environment maps.
//
// Values are collected into layers (plain map[string]string). Environ merges
// the layers so that the first layer defining a key wins, which gives the
// usual "process environment beats file" precedence without ever writing to
// the process environment:
//
//	secrets, err := envfile.Read(envfile.DefaultPath)
//	if err != nil {
//		return err
//	}
//	environ := config.Environ(config.ProcessEnv(os.Environ()), secrets)
//
// Load then parses struct fields tagged for the caarlos0/env library:
//
//	type SMTPConfig struct {
//		Host string `env:"SMTP_HOST,required,notEmpty"`
//		Port int    `env:"SMTP_PORT" envDefault:"587"`
//	}
//
//	var cfg SMTPConfig
//	if err := config.Load(&cfg, environ); err != nil {
//		// errors.Is(err, config.ErrConfiguration) == true
//	}
//
// Only the supplied map is consulted, so tests can resolve configuration
// without touching os.Setenv.
package config
