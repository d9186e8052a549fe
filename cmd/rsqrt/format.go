package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// writeVector prints v as a labeled block with one value per line:
//
//	label = [
//	    4.0,
//	]
func writeVector(w io.Writer, label string, v []float32) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = [\n", label)
	for _, x := range v {
		fmt.Fprintf(&sb, "    %s,\n", formatFloat(x))
	}
	sb.WriteString("]\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// formatFloat renders x in its shortest round-trip form, keeping a ".0"
// suffix on integral values. Magnitudes below 1e-4 or from 1e16 up switch to
// exponent notation.
func formatFloat(x float32) string {
	f := float64(x)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if e := strconv.FormatFloat(f, 'e', -1, 32); f != 0 {
		if exp := decimalExponent(e); exp < -4 || exp >= 16 {
			return formatExp(e)
		}
	}
	s := strconv.FormatFloat(f, 'f', -1, 32)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// decimalExponent returns the exponent of a number in Go 'e' notation.
func decimalExponent(s string) int {
	_, exp, _ := strings.Cut(s, "e")
	n, _ := strconv.Atoi(exp)
	return n
}

// formatExp rewrites Go exponent notation ("1e-05", "1.5e+16") into the
// short form "1e-5", "1.5e16".
func formatExp(s string) string {
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := ""
	switch exp[0] {
	case '-':
		sign, exp = "-", exp[1:]
	case '+':
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	return mant + "e" + sign + exp
}
