// Package linter содержит анализатор, запрещающий завершать процесс из кода
// библиотеки телеметрии.
//
// SDK встраивается в чужой процесс, поэтому panic, log.Fatal*, os.Exit и
// Fatal/Panic логгера zap допустимы только в main.main.
package linter

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

var Analyzer = &analysis.Analyzer{
	Name: "noexit",
	Doc:  "reports panic, log.Fatal*, os.Exit and zap Fatal/Panic calls outside main.main",
	Run:  run,
}

const zapPath = "go.uber.org/zap"

// zapTerminating — методы zap.Logger и zap.SugaredLogger, которые роняют процесс.
// DPanic сюда не входит: в production-конфигурации он только пишет запись.
var zapTerminating = map[string]bool{
	"Fatal": true, "Fatalf": true, "Fatalw": true, "Fatalln": true,
	"Panic": true, "Panicf": true, "Panicw": true, "Panicln": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		pkgName := file.Name.Name
		for _, decl := range file.Decls {
			funcName := ""
			if fDecl, ok := decl.(*ast.FuncDecl); ok {
				if fDecl.Body == nil {
					continue
				}
				// Методы с именем main не считаются точкой входа.
				if fDecl.Recv == nil {
					funcName = fDecl.Name.Name
				}
			}
			allowed := pkgName == "main" && funcName == "main"

			ast.Inspect(decl, func(node ast.Node) bool {
				call, ok := node.(*ast.CallExpr)
				if !ok || allowed {
					return true
				}
				checkCall(pass, call)
				return true
			})
		}
	}
	return nil, nil
}

func checkCall(pass *analysis.Pass, call *ast.CallExpr) {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		// Только встроенный panic, а не одноимённая функция пакета.
		if fun.Name == "panic" {
			if obj := pass.TypesInfo.Uses[fun]; obj != nil && obj.Pkg() == nil {
				pass.Reportf(fun.Pos(), "use of builtin panic outside main.main")
			}
		}
	case *ast.SelectorExpr:
		checkSelector(pass, fun)
	}
}

func checkSelector(pass *analysis.Pass, sel *ast.SelectorExpr) {
	name := sel.Sel.Name

	// Вызов метода: logger.Fatal(...), sugar.Panicf(...).
	if s, ok := pass.TypesInfo.Selections[sel]; ok {
		if s.Kind() == types.MethodVal && zapTerminating[name] && isZapLogger(s.Recv()) {
			pass.Reportf(sel.Sel.Pos(), "call to zap %s outside main.main", name)
		}
		return
	}

	// Функция пакета: log.Fatal, os.Exit.
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return
	}
	pkgNameObj, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return
	}

	switch pkgNameObj.Imported().Path() {
	case "log":
		if name == "Fatal" || name == "Fatalf" || name == "Fatalln" {
			pass.Reportf(sel.Sel.Pos(), "call to log.%s outside main.main", name)
		}
	case "os":
		if name == "Exit" {
			pass.Reportf(sel.Sel.Pos(), "call to os.Exit outside main.main")
		}
	}
}

func isZapLogger(t types.Type) bool {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != zapPath {
		return false
	}
	return obj.Name() == "Logger" || obj.Name() == "SugaredLogger"
}
