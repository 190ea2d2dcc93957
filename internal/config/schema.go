package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// JSONSchema returns the JSON schema of the configuration file, used by
// the CLI to document the config format.
func JSONSchema() (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(Config{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.KindAPI, "failed to marshal config schema", err)
	}

	return string(data), nil
}
