package lang

func init() {
	Register(&Spec{
		Language:           Java,
		FileExtensions:     []string{".java"},
		FunctionNodeTypes:  []string{"method_declaration", "constructor_declaration"},
		ClassNodeTypes:     []string{"class_declaration"},
		InterfaceNodeTypes: []string{"interface_declaration"},
		EnumNodeTypes:      []string{"enum_declaration"},
		VariableNodeTypes:  []string{"field_declaration"},
		ImportNodeTypes:    []string{"import_declaration"},
		CallNodeTypes:      []string{"method_invocation", "object_creation_expression"},
		BodyNodeType:       "class_body",
	})
}
