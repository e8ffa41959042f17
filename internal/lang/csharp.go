package lang

func init() {
	Register(&Spec{
		Language:           CSharp,
		FileExtensions:     []string{".cs"},
		FunctionNodeTypes:  []string{"method_declaration", "constructor_declaration", "local_function_statement"},
		ClassNodeTypes:     []string{"class_declaration", "struct_declaration"},
		InterfaceNodeTypes: []string{"interface_declaration"},
		EnumNodeTypes:      []string{"enum_declaration"},
		VariableNodeTypes:  []string{"field_declaration"},
		ImportNodeTypes:    []string{"using_directive"},
		CallNodeTypes:      []string{"invocation_expression", "object_creation_expression"},
		BodyNodeType:       "declaration_list",
	})
}
