// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"bytes"
	"testing"
)

func TestWriter_Formatted(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.BeginObject()
	w.WriteField("id", "u1")
	w.WriteField("name", "Ana")
	w.BeginObject()
	w.WriteField("id", "u2")
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "--- 1 ---\nid: u1\nname: Ana\n--- 2 ---\nid: u2\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriter_Delimited(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.setDelimited(true)

	w.BeginObject()
	w.WriteField("id", "u1")
	w.WriteField("name", "Ana")
	w.BeginObject()
	w.WriteField("id", "u2")
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "u1;Ana\nu2\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// The object counter keeps running when the mode flips between instances,
// so formatted headers number across the whole batch.
func TestWriter_CounterSpansModes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.BeginObject()
	w.WriteField("id", "u1")

	w.setDelimited(true)
	w.BeginObject()
	w.WriteField("id", "u2")

	w.setDelimited(false)
	w.BeginObject()
	w.WriteField("id", "u3")
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "--- 1 ---\nid: u1\nu2\n--- 3 ---\nid: u3\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriter_ImplicitBegin(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteField("median", "none")
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "--- 1 ---\nmedian: none\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
