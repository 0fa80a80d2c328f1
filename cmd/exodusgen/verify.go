package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	ncf "github.com/ctessum/cdf"
	"github.com/kr/pretty"

	"github.com/batchatco/go-native-exodus/netcdf"
	"github.com/batchatco/go-native-exodus/netcdf/api"
)

// verify reads path with an independent CDF reader and reports every
// variable whose dimensions, attributes or values differ from ours.
func verify(w io.Writer, path string) error {
	ours, err := netcdf.Open(path)
	if err != nil {
		return fmt.Errorf("exodusgen: %s: %w", path, err)
	}
	defer ours.Close()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	theirs, err := ncf.Open(file)
	if err != nil {
		return fmt.Errorf("exodusgen: independent reader: %w", err)
	}

	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	if got, want := len(theirs.Header.Variables()), len(ours.ListVariables()); got != want {
		report("%d variables, expected %d", got, want)
	}
	for _, name := range ours.ListVariables() {
		vi, _ := ours.Variable(name)
		if dims := theirs.Header.Dimensions(name); !slices.Equal(dims, vi.Dimensions) {
			report("%s: dimensions %v, expected %v", name, dims, vi.Dimensions)
			continue
		}
		for _, key := range vi.Attributes.Keys() {
			v, _ := vi.Attributes.Get(key)
			if diff := pretty.Diff(attrValue(v), theirs.Header.GetAttribute(name, key)); len(diff) > 0 {
				report("%s:%s: %v", name, key, diff)
			}
		}
		want, err := ours.Read(name)
		if err != nil {
			return err
		}
		got, err := readAll(theirs, vi)
		if err != nil {
			report("%s: %v", name, err)
			continue
		}
		if diff := pretty.Diff(want, got); len(diff) > 0 {
			report("%s: %d values differ, first %s", name, len(diff), diff[0])
		}
	}
	for _, p := range problems {
		fmt.Fprintln(w, p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("exodusgen: %s: %d problems", path, len(problems))
	}
	fmt.Fprintf(w, "%s: %d variables match\n", path, len(ours.ListVariables()))
	return nil
}

// attrValue converts a scalar attribute to the one element slice the
// independent reader returns.
func attrValue(v any) any {
	switch v := v.(type) {
	case int32:
		return []int32{v}
	case float32:
		return []float32{v}
	case float64:
		return []float64{v}
	case int64:
		return []int64{v}
	}
	return v
}

// readAll reads a whole variable with explicit bounds, which also covers
// record variables.
func readAll(f *ncf.File, vi api.VarInfo) (any, error) {
	begin := make([]int, len(vi.Shape))
	end := make([]int, len(vi.Shape))
	for i, s := range vi.Shape {
		end[i] = int(s)
	}
	n := 1
	for _, e := range end {
		n *= e
	}
	r := f.Reader(vi.Name, begin, end)
	buf := r.Zero(n)
	if n == 0 {
		return buf, nil
	}
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
