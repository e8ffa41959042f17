package lang

func init() {
	Register(&Spec{
		Language:          CPP,
		FileExtensions:    []string{".cpp", ".cxx", ".cc", ".hpp", ".h"},
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"class_specifier", "struct_specifier"},
		EnumNodeTypes:     []string{"enum_specifier"},
		ImportNodeTypes:   []string{"preproc_include"},
		CallNodeTypes:     []string{"call_expression", "new_expression"},
		BodyNodeType:      "field_declaration_list",
	})
}
