package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/kr/pretty"

	"github.com/batchatco/go-native-exodus/exodus"
	"github.com/batchatco/go-native-exodus/netcdf"
	"github.com/batchatco/go-native-exodus/netcdf/api"
)

// dump prints the layout of a file in CDL, optionally with the values of
// every variable.
func dump(w io.Writer, path string, values bool) error {
	c, err := netcdf.Open(path)
	if err != nil {
		return fmt.Errorf("exodusgen: %s: %w", path, err)
	}
	defer c.Close()

	fmt.Fprintf(w, "netcdf %s {\n", path)
	fmt.Fprintln(w, "dimensions:")
	for _, name := range c.ListDimensions() {
		d, _ := c.Dimension(name)
		if d.Unlimited {
			fmt.Fprintf(w, "\t%s = UNLIMITED ; // (%d currently)\n", name, d.Len)
			continue
		}
		fmt.Fprintf(w, "\t%s = %d ;\n", name, d.Len)
	}
	fmt.Fprintln(w, "variables:")
	for _, name := range c.ListVariables() {
		vi, _ := c.Variable(name)
		fmt.Fprintf(w, "\t%v %s(%s) ;\n", vi.Type, name, strings.Join(vi.Dimensions, ", "))
		writeAttributes(w, "\t\t"+name, vi.Attributes)
	}
	if attrs, err := c.Attributes(""); err == nil && len(attrs.Keys()) > 0 {
		fmt.Fprintln(w, "\n// global attributes:")
		writeAttributes(w, "\t\t", attrs)
	}
	if values {
		fmt.Fprintln(w, "data:")
		for _, name := range c.ListVariables() {
			vi, _ := c.Variable(name)
			data, err := c.Read(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\n %s = %s ;\n", name, formatValues(vi, data))
		}
	}
	fmt.Fprintln(w, "}")
	return nil
}

func writeAttributes(w io.Writer, prefix string, attrs api.AttributeMap) {
	for _, key := range attrs.Keys() {
		v, _ := attrs.Get(key)
		if s, ok := v.(string); ok {
			fmt.Fprintf(w, "%s:%s = %q ;\n", prefix, key, s)
			continue
		}
		fmt.Fprintf(w, "%s:%s = %v ;\n", prefix, key, v)
	}
}

// formatValues shows character tables as their rows of names.
func formatValues(vi api.VarInfo, data any) string {
	if b, ok := data.([]byte); ok && len(vi.Shape) == 2 && vi.Shape[1] > 0 {
		width := int(vi.Shape[1])
		rows := make([]string, 0, len(b)/width)
		for i := 0; i+width <= len(b); i += width {
			rows = append(rows, exodus.DecodeName(b[i:i+width]))
		}
		return pretty.Sprint(rows)
	}
	return pretty.Sprint(data)
}
