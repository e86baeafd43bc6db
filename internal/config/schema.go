// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// maxConfigSize bounds the config files that are compiled at all.
const maxConfigSize = 1 << 20

// decodeConfigFile unifies a config file with the embedded #Config schema and
// returns its fields as a map for Viper. Optional fields may stay unset, so
// only the values that are present must be concrete.
func decodeConfigFile(data []byte, filename string) (map[string]any, error) {
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxConfigSize)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileBytes(configSchema)
	if schema.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath(schemaPath))
	if def.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, def.Err())
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if value.Err() != nil {
		return nil, schemaError(value.Err(), filename)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, schemaError(err, filename)
	}

	var fields map[string]any
	if err := unified.Decode(&fields); err != nil {
		return nil, schemaError(err, filename)
	}
	return fields, nil
}

// schemaError flattens a CUE error list into one error whose lines read
// "<json path>: <message>", prefixed with the file name.
func schemaError(err error, filename string) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		path := jsonPath(cueerrors.Path(e))
		msg := e.Error()
		if path == "" {
			lines = append(lines, msg)
			continue
		}
		msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		lines = append(lines, path+": "+msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filename, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filename, strings.Join(lines, "\n  "))
}

// jsonPath renders a CUE path such as [artifacts 0 repo] as artifacts[0].repo.
func jsonPath(parts []string) string {
	var sb strings.Builder
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil && i > 0 {
			sb.WriteString("[" + p + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(p)
	}
	return sb.String()
}
