// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package traveldb

import (
	"bufio"
	"fmt"
	"io"
)

// QueryWriter is the incremental output surface handed to query execute
// callbacks. Execute code never sees the underlying buffering or the
// per-instance output mode; it only demarcates objects and appends fields.
type QueryWriter interface {
	// BeginObject demarcates a new output record.
	BeginObject()
	// WriteField appends one field of the current object.
	WriteField(key, value string)
}

// Writer emits query output in one of two modes, selected per instance by
// the executor: formatted ("--- N ---" header plus "key: value" lines) or
// delimited (one line per object, values ";"-joined). The object counter for
// formatted headers runs across the whole batch.
type Writer struct {
	w         *bufio.Writer
	delimited bool
	objects   int
	inObject  bool
	fields    int
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// setDelimited selects the output mode for the instance about to execute.
// The executor calls it between instances, never mid-object.
func (w *Writer) setDelimited(delimited bool) {
	w.endObject()
	w.delimited = delimited
}

// BeginObject demarcates a new output record.
func (w *Writer) BeginObject() {
	w.endObject()
	w.objects++
	w.inObject = true
	w.fields = 0
	if !w.delimited {
		fmt.Fprintf(w.w, "--- %d ---\n", w.objects)
	}
}

// WriteField appends one field of the current object.
func (w *Writer) WriteField(key, value string) {
	if !w.inObject {
		w.BeginObject()
	}
	if w.delimited {
		if w.fields > 0 {
			w.w.WriteByte(';')
		}
		w.w.WriteString(value)
	} else {
		w.w.WriteString(key)
		w.w.WriteString(": ")
		w.w.WriteString(value)
		w.w.WriteByte('\n')
	}
	w.fields++
}

// endObject closes the pending object, which in delimited mode is what
// terminates the line.
func (w *Writer) endObject() {
	if !w.inObject {
		return
	}
	if w.delimited {
		w.w.WriteByte('\n')
	}
	w.inObject = false
}

// Flush closes any pending object and flushes buffered output.
func (w *Writer) Flush() error {
	w.endObject()
	return w.w.Flush()
}

var _ QueryWriter = (*Writer)(nil)
