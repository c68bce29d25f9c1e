// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package screenshot services deferred screenshot requests.
//
// A request is made between frames and serviced during the next draw, once
// the buffer it captures has finished rendering. At most one request per
// Kind is in flight; further requests are rejected until it completes.
package screenshot

import (
	"errors"
	"image"
	"strconv"
	"strings"
)

// Kind selects which buffer a screenshot captures.
type Kind uint8

const (
	// Lenticular captures the final interleaved surface.
	Lenticular Kind = iota

	// Quilt captures the quilt render target.
	Quilt

	// TwoD captures a dedicated flat render of the centre view.
	TwoD

	numKinds
)

var kindNames = [numKinds]string{
	Lenticular: "lenticular",
	Quilt:      "quilt",
	TwoD:       "2d",
}

// ErrUnknownKind is returned when parsing an unknown kind name.
var ErrUnknownKind = errors.New("screenshot: unknown kind")

// Kinds returns every screenshot kind.
func Kinds() []Kind {
	return []Kind{Lenticular, Quilt, TwoD}
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k < numKinds
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrUnknownKind
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if strings.EqualFold(name, string(b)) {
			*k = Kind(i)
			return nil
		}
	}
	return ErrUnknownKind
}

// Request is a pending screenshot.
type Request struct {
	Kind Kind

	// Filename is the resolved output path. Empty means nothing will be
	// written; the request still completes and notifies.
	Filename string

	// ShowUI captures the window with its UI rather than the bare surface.
	// Only meaningful for Lenticular.
	ShowUI bool

	// Crop limits the capture to a sub-rectangle, relative to the captured
	// image origin. Empty keeps the whole image.
	Crop image.Rectangle
}

// Result reports a completed request.
type Result struct {
	Kind     Kind   `json:"kind"`
	Filename string `json:"filename,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Err      error  `json:"-"`
}

// Written reports whether a file was saved.
func (r Result) Written() bool {
	return r.Filename != "" && r.Err == nil
}
