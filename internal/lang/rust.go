package lang

func init() {
	Register(&Spec{
		Language:           Rust,
		FileExtensions:     []string{".rs"},
		FunctionNodeTypes:  []string{"function_item"},
		ClassNodeTypes:     []string{"struct_item"},
		InterfaceNodeTypes: []string{"trait_item"},
		EnumNodeTypes:      []string{"enum_item"},
		VariableNodeTypes:  []string{"static_item", "const_item"},
		ImportNodeTypes:    []string{"use_declaration"},
		CallNodeTypes:      []string{"call_expression", "macro_invocation"},
		BodyNodeType:       "declaration_list",
	})
}
