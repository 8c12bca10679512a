// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package snapshot

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
)

// SchemaID is the $id of the generated schema.
const SchemaID = "https://holomush.dev/schemas/turnsim-snapshot.schema.json"

var rawMessageType = reflect.TypeOf(json.RawMessage{})

// GenerateSchema generates a JSON Schema from the Document struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			// Component values are arbitrary JSON.
			if t == rawMessageType {
				return &jsonschema.Schema{}
			}
			return nil
		},
	}
	schema := r.Reflect(&Document{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "turnsim level snapshot"
	schema.Description = "A persisted level with its scheduler and random stream"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("snapshot").Wrapf(err, "marshal schema")
	}
	return data, nil
}

var compiledSchema = sync.OnceValues(func() (*jschema.Schema, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.In("snapshot").Wrapf(err, "parse schema")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("snapshot.schema.json", doc); err != nil {
		return nil, oops.In("snapshot").Wrapf(err, "add schema resource")
	}
	sch, err := c.Compile("snapshot.schema.json")
	if err != nil {
		return nil, oops.In("snapshot").Wrapf(err, "compile schema")
	}
	return sch, nil
})

// validate checks JSON-compatible data against the document schema.
func validate(instance any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(instance); err != nil {
		return oops.In("snapshot").Code(CodeSchemaViolation).Hint("document does not match the snapshot schema").Wrap(err)
	}
	return nil
}
