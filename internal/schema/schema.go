// Package schema holds the CUE schema the analysis config is validated
// against. A project may tighten the built-in schema by dropping an
// .analysis_schema.cue next to its waveforms.
package schema

import (
	_ "embed"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pkg/errors"
)

//go:embed analysis.cue
var defaultSchemaSrc []byte

// ProjectSchemaFile is looked up relative to the project root.
const ProjectSchemaFile = ".analysis_schema.cue"

type Schema struct {
	Context *cue.Context
	Value   cue.Value
}

// Default compiles the built-in schema.
func Default() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(defaultSchemaSrc, cue.Filename("analysis.cue"))
	if err := v.Err(); err != nil {
		return nil, errors.Wrap(err, "compile built-in schema")
	}
	return &Schema{Context: ctx, Value: v}, nil
}

// LoadFull returns the built-in schema unified with the project's
// override file, when one exists. A missing override is not an error.
func LoadFull(projectRoot string) (*Schema, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	if projectRoot == "" {
		return s, nil
	}
	path := filepath.Join(projectRoot, ProjectSchemaFile)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	override := s.Context.CompileBytes(src, cue.Filename(path))
	if err := override.Err(); err != nil {
		return nil, errors.Wrapf(err, "compile %s", path)
	}
	merged := s.Value.Unify(override)
	if err := merged.Err(); err != nil {
		return nil, errors.Wrapf(err, "merge %s", path)
	}
	s.Value = merged
	return s, nil
}

// ValidateConfig checks an analysis config (any JSON-encodable value)
// against #Config.
func (s *Schema) ValidateConfig(cfg any) error {
	def := s.Value.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return errors.Wrap(err, "schema has no #Config")
	}
	res := def.Unify(s.Context.Encode(cfg))
	if err := res.Err(); err != nil {
		return err
	}
	return res.Validate(cue.Final())
}
