// Package config provides loading and environment overlay for segqueue's
// runtime configuration. It exposes a Default() baseline and a YAML loader,
// with SEGQ_* environment variables applied on top.
//
// Example:
//
//	cfg, _ := config.Load("/etc/segqueue.yaml")
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
