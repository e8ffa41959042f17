package lang

func init() {
	Register(&Spec{
		Language:          Go,
		FileExtensions:    []string{".go"},
		FunctionNodeTypes: []string{"function_declaration", "method_declaration"},
		ClassNodeTypes:    []string{"type_declaration"},
		VariableNodeTypes: []string{"var_declaration", "const_declaration"},
		ImportNodeTypes:   []string{"import_declaration"},
		CallNodeTypes:     []string{"call_expression"},
	})
}
