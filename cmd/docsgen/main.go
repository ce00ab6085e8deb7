// Генерация документации по кодам ошибок API в формате Markdown.
// Разбирает файл с определениями DefinedError и строит таблицу: код, HTTP код, сообщение и сообщение на турецком.
//
// Пример запуска: go run ./cmd/docsgen -src internal/koop/apierrors/apierrors.go -out api_errors.md
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"strconv"

	md "github.com/nao1215/markdown"
)

// коды, используемые в каталоге ошибок
var statusCodes = map[string]int{
	"StatusBadRequest":            400,
	"StatusUnauthorized":          401,
	"StatusForbidden":             403,
	"StatusNotFound":              404,
	"StatusConflict":              409,
	"StatusGone":                  410,
	"StatusRequestEntityTooLarge": 413,
	"StatusUnprocessableEntity":   422,
	"StatusTooManyRequests":       429,
	"StatusInternalServerError":   500,
}

func main() {
	errorsFile := flag.String("src", "internal/koop/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "api_errors.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, *errorsFile, nil, 0)
	if err != nil {
		slog.Error("Parse errors file", "err", err)
		os.Exit(1)
	}

	out, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output file", "err", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := md.NewMarkdown(out).
		H1("Hata kodları").
		PlainText("Sunucunun döndürebileceği hataların listesi.").
		CustomTable(md.TableSet{
			Header: []string{"Kod", "HTTP kodu", "Mesaj", "Türkçe mesaj"},
			Rows:   getRows(f),
		}, md.TableOptions{
			AutoWrapText: false,
		}).Build(); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")
}

// getRows собирает строки таблицы из всех значений вида DefinedError{...} в файле.
func getRows(f *ast.File) [][]string {
	var rows [][]string
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok || decl.Tok != token.VAR {
			continue
		}
		for _, s := range decl.Specs {
			vs, ok := s.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, v := range vs.Values {
				lit, ok := v.(*ast.CompositeLit)
				if !ok || fmt.Sprint(lit.Type) != "DefinedError" {
					continue
				}
				rows = append(rows, errorRow(lit))
			}
		}
	}
	return rows
}

func errorRow(lit *ast.CompositeLit) []string {
	row := make([]string, 4)
	status := "StatusBadRequest"
	for _, el := range lit.Elts {
		kv, ok := el.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		switch fmt.Sprint(kv.Key) {
		case "Code":
			if bl, ok := kv.Value.(*ast.BasicLit); ok {
				row[0] = md.Bold(bl.Value)
			}
		case "StatusCode":
			if sel, ok := kv.Value.(*ast.SelectorExpr); ok {
				status = sel.Sel.Name
			}
		case "Err":
			row[2] = codeCell(kv.Value)
		case "TrErr":
			row[3] = codeCell(kv.Value)
		}
	}
	code, ok := statusCodes[status]
	if !ok {
		row[1] = md.Italic(status)
	} else {
		row[1] = fmt.Sprintf("%d %s", code, md.Italic(status))
	}
	return row
}

func codeCell(expr ast.Expr) string {
	s := stringValue(expr)
	if s == "" {
		return ""
	}
	return md.Code(s)
}

// stringValue раскрывает строковые литералы и их конкатенацию.
func stringValue(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if s, err := strconv.Unquote(e.Value); err == nil {
			return s
		}
		return e.Value
	case *ast.BinaryExpr:
		return stringValue(e.X) + stringValue(e.Y)
	case *ast.ParenExpr:
		return stringValue(e.X)
	}
	return ""
}
