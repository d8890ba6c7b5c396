package config

import (
	"maps"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// scriptFunctions are the functions callable from kiln.hcl expressions.
var scriptFunctions = map[string]function.Function{
	"coalesce": stdlib.CoalesceFunc,
	"concat":   stdlib.ConcatFunc,
	"format":   stdlib.FormatFunc,
	"join":     stdlib.JoinFunc,
	"lookup":   stdlib.LookupFunc,
	"lower":    stdlib.LowerFunc,
	"upper":    stdlib.UpperFunc,
}

// decodeHCL evaluates a kiln.hcl build script.
//
// Expressions can reference project.{name,path,dir,root}, property.<key>
// and env.<key> for environment variables declared in the settings file.
func decodeHCL(src []byte, filename string, scope *scriptScope, project *domain.Project) (*BuildFile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var raw hclBuildFile
	if diags := gohcl.DecodeBody(file.Body, evalContext(scope, project), &raw); diags.HasErrors() {
		return nil, diags
	}

	bf := &BuildFile{
		Description: deref(raw.Description),
		Tasks:       make(map[string]*TaskDTO, len(raw.Tasks)),
	}
	for _, t := range raw.Tasks {
		if _, exists := bf.Tasks[t.Name]; exists {
			return nil, zerr.With(domain.ErrTaskAlreadyExists, "task", t.Name)
		}
		bf.Tasks[t.Name] = t.toDTO()
	}
	return bf, nil
}

func evalContext(scope *scriptScope, project *domain.Project) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"project": cty.ObjectVal(map[string]cty.Value{
				"name": cty.StringVal(project.Name),
				"path": cty.StringVal(project.Path),
				"dir":  cty.StringVal(project.Dir),
				"root": cty.StringVal(scope.settings.RootProject),
			}),
			"property": stringMap(scope.properties),
			"env":      stringMap(scope.env),
		},
		Functions: scriptFunctions,
	}
}

func stringMap(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	vals := make(map[string]cty.Value, len(m))
	for k, v := range maps.All(m) {
		vals[k] = cty.StringVal(v)
	}
	return cty.MapVal(vals)
}
