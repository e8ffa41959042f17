package lang

func init() {
	Register(&Spec{
		Language:          JavaScript,
		FileExtensions:    []string{".js", ".jsx", ".mjs"},
		FunctionNodeTypes: []string{"function_declaration", "generator_function_declaration", "method_definition"},
		ClassNodeTypes:    []string{"class_declaration"},
		VariableNodeTypes: []string{"lexical_declaration", "variable_declaration"},
		ImportNodeTypes:   []string{"import_statement"},
		CallNodeTypes:     []string{"call_expression", "new_expression"},
		BodyNodeType:      "class_body",
	})
}
