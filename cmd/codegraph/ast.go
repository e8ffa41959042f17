package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

var astCmd = &cobra.Command{
	Use:   "ast <file>",
	Short: "Dump the tree-sitter AST of a source file",
	Long:  "Parses a single file and prints its syntax tree with node kinds and text. Useful when adding or debugging per-language extraction rules.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAST,
}

func init() {
	rootCmd.AddCommand(astCmd)
}

func runAST(cmd *cobra.Command, args []string) error {
	path := args[0]
	spec := lang.ForExtension(filepath.Ext(path))
	if spec == nil {
		return fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tree, err := parser.Parse(spec.Language, source)
	if err != nil {
		return err
	}
	defer tree.Close()

	printAST(tree.RootNode(), source, 0)
	return nil
}

func printAST(node *tree_sitter.Node, source []byte, indent int) {
	if node == nil {
		return
	}
	text := string(source[node.StartByte():node.EndByte()])
	if len(text) > 60 {
		text = text[:60] + "..."
	}
	text = strings.ReplaceAll(text, "\n", "\\n")
	fmt.Printf("%s%s [%d] %q\n", strings.Repeat("  ", indent), node.Kind(), parser.Line(node), text)
	for i := uint(0); i < node.ChildCount(); i++ {
		printAST(node.Child(i), source, indent+1)
	}
}
