// Command generate-config writes the effective configuration (defaults,
// CONFIG_FILE and environment) as YAML so it can be reviewed or reused as a
// CONFIG_FILE. Secrets are redacted unless -show-secrets is set.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/raseed-labs/raseed-backend/config"
	"github.com/raseed-labs/raseed-backend/logger"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

func main() {
	out := flag.String("out", "", "Output file (defaults to stdout)")
	showSecrets := flag.Bool("show-secrets", false, "Write secrets in clear text")
	flag.Parse()

	logger.InitLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if !*showSecrets {
		redactSecrets(cfg)
	}

	data, err := render(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to render config: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Configuration written to %s\n", *out)
}

func render(cfg *config.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func redactSecrets(cfg *config.Config) {
	for _, s := range []*string{
		&cfg.Database.Password,
		&cfg.Redis.Password,
		&cfg.LLM.APIKey,
		&cfg.Storage.AccessKeyID,
		&cfg.Storage.SecretAccessKey,
	} {
		if *s != "" {
			*s = redacted
		}
	}
}
