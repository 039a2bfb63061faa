package main

import (
	"fmt"
	"io"
	"strings"
)

func (a *app) fprintRow(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
