package compiler

import "errors"

var (
	ErrCompiler = errors.New("compiler invocation failed")
	ErrAnalyzer = errors.New("analyzer changed on disk")
)
