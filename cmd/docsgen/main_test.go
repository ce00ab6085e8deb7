package main

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogSrc = `package apierrors

import "net/http"

var (
	ErrGeneric = DefinedError{Code: 1, StatusCode: http.StatusBadRequest, Err: "bad request", TrErr: "Hatalı istek"}
	ErrGone    = DefinedError{Code: 4004, StatusCode: http.StatusGone, Err: "editor " + "session closed", TrErr: "Editör oturumu kapandı"}
	ErrNoCode  = DefinedError{Code: 7, Err: "plain"}
	notError   = "skip me"
)
`

func TestGetRows(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "apierrors.go", catalogSrc, 0)
	require.NoError(t, err)

	rows := getRows(f)
	require.Len(t, rows, 3)

	assert.Contains(t, rows[0][0], "1")
	assert.Contains(t, rows[0][1], "400")
	assert.Contains(t, rows[0][2], "bad request")
	assert.Contains(t, rows[0][3], "Hatalı istek")

	assert.Contains(t, rows[1][1], "410")
	assert.Contains(t, rows[1][2], "editor session closed")

	// без StatusCode используется 400
	assert.Contains(t, rows[2][1], "400")
	assert.Empty(t, rows[2][3])
}
