package lang

func init() {
	Register(&Spec{
		Language:          Python,
		FileExtensions:    []string{".py", ".pyi", ".pyw"},
		FunctionNodeTypes: []string{"function_definition"},
		ClassNodeTypes:    []string{"class_definition"},
		VariableNodeTypes: []string{"assignment"},
		ImportNodeTypes:   []string{"import_statement", "import_from_statement"},
		CallNodeTypes:     []string{"call"},
		BodyNodeType:      "block",
	})
}
