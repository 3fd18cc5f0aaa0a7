package dao

import (
	"fmt"
	"log"
	"sort"

	"github.com/apitable/apitable-go-sdk/api"
	"github.com/apitable/apitable-go-sdk/utils"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// CompileFilter compiles a record filter expression such as
// "age > 30 && city == 'Taipei'".
func CompileFilter(code string) (*vm.Program, error) {
	program, err := expr.Compile(code, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter %q: %w", code, err)
	}
	return program, nil
}

func evalFilter(program *vm.Program, r *api.Record) (bool, error) {
	output, err := expr.Run(program, filterEnv(r))
	if err != nil {
		return false, err
	}
	matched, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", output)
	}
	return matched, nil
}

// filterEnv exposes the record data, with a table record's row fields
// lifted to the top level.
func filterEnv(r *api.Record) map[string]interface{} {
	env := make(map[string]interface{}, len(r.Data)+1)
	for k, v := range r.Data {
		env[k] = v
	}
	if row := utils.ToStringMap(r.Data["data"]); row != nil {
		for k, v := range row {
			env[k] = v
		}
	}
	env["_id"] = r.Id
	return env
}

// ExtractVariables parses the expression and returns every variable name it references.
func ExtractVariables(code string) ([]string, error) {
	tree, err := parser.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression: %w", err)
	}

	variables := make(map[string]struct{})
	walk(tree.Node, variables)

	var result []string
	for v := range variables {
		result = append(result, v)
	}

	sort.Strings(result)

	return result, nil
}

func walk(node ast.Node, variables map[string]struct{}) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *ast.IdentifierNode:
		variables[n.Value] = struct{}{}

	case *ast.BinaryNode:
		walk(n.Left, variables)
		walk(n.Right, variables)

	case *ast.UnaryNode:
		walk(n.Node, variables)

	case *ast.MemberNode:
		walk(n.Node, variables)

	case *ast.CallNode:
		for _, arg := range n.Arguments {
			walk(arg, variables)
		}
		// builtin and env functions are not variables
		if _, ok := n.Callee.(*ast.IdentifierNode); !ok {
			walk(n.Callee, variables)
		}

	case *ast.BuiltinNode:
		for _, arg := range n.Arguments {
			walk(arg, variables)
		}

	case *ast.ClosureNode:
		walk(n.Node, variables)

	case *ast.PointerNode:
		// closure argument

	case *ast.ConditionalNode:
		walk(n.Cond, variables)
		walk(n.Exp1, variables)
		walk(n.Exp2, variables)

	case *ast.ArrayNode:
		for _, elem := range n.Nodes {
			walk(elem, variables)
		}

	case *ast.MapNode:
		for _, pair := range n.Pairs {
			walk(pair, variables)
		}

	case *ast.PairNode:
		walk(n.Key, variables)
		walk(n.Value, variables)

	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.StringNode:
		// constants

	default:
		log.Printf("unhandled node type: %T\n", n)
	}
}
