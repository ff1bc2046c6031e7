package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"javelin/interpreter-go/pkg/resolver"
	"javelin/interpreter-go/pkg/runtime"
)

// ClassFileName is the descriptor file at the root of a class library.
const ClassFileName = "classes.yml"

// A descriptor lists classes in declaration order. A superclass or field
// type must be a builtin or a class declared earlier.
//
//	classes:
//	  - name: geo.Point
//	    fields:
//	      - {name: x, type: int}
//	      - {name: y, type: int, final: true}
//	  - name: geo.OutOfBounds
//	    extends: RuntimeException
type classFile struct {
	Classes []classYAML `yaml:"classes"`
}

type classYAML struct {
	Name    string      `yaml:"name"`
	Extends string      `yaml:"extends"`
	Fields  []fieldYAML `yaml:"fields"`
}

type fieldYAML struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Final bool   `yaml:"final"`
}

// DeclareClasses adds every class of a YAML descriptor to lib.
func DeclareClasses(lib *resolver.Library, data []byte, origin string) ([]*runtime.Class, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var file classFile
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("classes: parse %s: %w", origin, err)
	}

	declared := make([]*runtime.Class, 0, len(file.Classes))
	for idx, desc := range file.Classes {
		spec := resolver.ClassSpec{Name: desc.Name, Extends: desc.Extends}
		for _, field := range desc.Fields {
			t, err := lib.ParseTypeName(field.Type)
			if err != nil {
				return nil, fmt.Errorf("classes: %s: classes[%d].%s: %w", origin, idx, field.Name, err)
			}
			spec.Fields = append(spec.Fields, resolver.FieldSpec{Name: field.Name, Type: t, Final: field.Final})
		}
		class, err := lib.DeclareClass(spec)
		if err != nil {
			return nil, fmt.Errorf("classes: %s: classes[%d]: %w", origin, idx, err)
		}
		declared = append(declared, class)
	}
	return declared, nil
}

// LoadClassFile reads and declares the descriptor at path.
func LoadClassFile(lib *resolver.Library, path string) ([]*runtime.Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classes: %w", err)
	}
	return DeclareClasses(lib, data, path)
}
