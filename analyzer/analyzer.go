package analyzer

import (
	"go/ast"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = New()

func New() *analysis.Analyzer {
	return &analysis.Analyzer{
		Name:     "chanlock",
		Doc:      "Checks for blocking channel operations made while a mutex is held",
		Run:      run,
		Requires: []*analysis.Analyzer{inspect.Analyzer},
	}
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{(*ast.FuncDecl)(nil)}

	inspector.Preorder(nodeFilter, func(node ast.Node) {
		funcDecl := node.(*ast.FuncDecl)

		if funcDecl.Body == nil {
			return
		}

		checkBlock(pass, funcDecl.Body.List, map[string]bool{})
	})

	return nil, nil
}

// checkBlock walks stmts in order, tracking which receivers currently
// have Lock called without a matching Unlock. A deferred Unlock does not
// release; the lock stays held for the rest of the function.
func checkBlock(pass *analysis.Pass, stmts []ast.Stmt, held map[string]bool) {
	for _, stmt := range stmts {
		switch stmt := stmt.(type) {
		case *ast.ExprStmt:
			checkCall(pass, stmt.X, held, false)

		case *ast.DeferStmt:
			checkCall(pass, stmt.Call, held, true)

		case *ast.AssignStmt:
			for _, rhs := range stmt.Rhs {
				checkCall(pass, rhs, held, false)
			}

		case *ast.BlockStmt:
			checkBlock(pass, stmt.List, held)

		// Branch and loop bodies get a copy of the held set; a Lock or
		// Unlock on only one path must not leak into the statements after
		// the branch.
		case *ast.IfStmt:
			checkBlock(pass, stmt.Body.List, copyHeld(held))

			if b, ok := stmt.Else.(*ast.BlockStmt); ok {
				checkBlock(pass, b.List, copyHeld(held))
			}

		case *ast.ForStmt:
			checkBlock(pass, stmt.Body.List, copyHeld(held))

		case *ast.RangeStmt:
			checkBlock(pass, stmt.Body.List, copyHeld(held))
		}
	}
}

func checkCall(pass *analysis.Pass, expr ast.Expr, held map[string]bool, deferred bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return
	}

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}

	recv := types.ExprString(sel.X)

	switch sel.Sel.Name {
	case "Lock":
		held[recv] = true

	case "Unlock":
		if !deferred {
			delete(held, recv)
		}

	case "Send", "Receive":
		if len(held) == 0 {
			return
		}

		pass.Reportf(call.Pos(), "%s called while %s is held; a blocking channel operation under a lock can deadlock, use the non-blocking variant or release the lock first", sel.Sel.Name, heldNames(held))
	}
}

func copyHeld(held map[string]bool) map[string]bool {
	c := make(map[string]bool, len(held))
	for k, v := range held {
		c[k] = v
	}

	return c
}

func heldNames(held map[string]bool) string {
	names := make([]string, 0, len(held))
	for name := range held {
		names = append(names, name)
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}
