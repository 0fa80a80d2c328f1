package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestGood(t *testing.T) {
	var goodStrings = []string{
		"_",
		"a",
		"1",
		"0°",
		"vals_elem_var3eb1",
		"num_el_in_blk12",
	}
	for i := range goodStrings {
		if !IsValidNetCDFName(goodStrings[i]) {
			t.Error("name should be good", goodStrings[i])
			return
		}
	}
}

func TestBad(t *testing.T) {
	var badStrings = []string{
		"_ ",
		"/",
		"no/good",
		"\ta ",
		"1\t",
		"°",
		"°C",
		"\x08",
		"double",
		strings.Repeat("a", MaxNameLength+1),
	}
	for i := range badStrings {
		if IsValidNetCDFName(badStrings[i]) {
			t.Error("name should be bad", badStrings[i])
			return
		}
	}
}

func TestCheckName(t *testing.T) {
	if err := CheckName("connect1"); err != nil {
		t.Error(err)
	}
	if err := CheckName("no/good"); !errors.Is(err, ErrInvalidName) {
		t.Error("expected ErrInvalidName, got", err)
	}
}
