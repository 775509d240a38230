// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"fmt"
	"math/bits"
)

// field is an editable command parameter.
type field interface {
	String() string
	edit(c *Console) error
}

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type uintField[T unsigned] struct {
	label string
	p     *T
	limit uint64
}

// uintParam edits *p, accepting any value that fits in T.
func uintParam[T unsigned](label string, p *T) *uintField[T] {
	return &uintField[T]{label: label, p: p, limit: uint64(^T(0))}
}

// clamp lowers the largest accepted value. Larger input is clamped, with a notice.
func (f *uintField[T]) clamp(limit T) *uintField[T] {
	f.limit = uint64(limit)
	return f
}

func (f *uintField[T]) String() string {
	return fmt.Sprintf("%s: %d", f.label, *f.p)
}

func (f *uintField[T]) edit(c *Console) error {
	v, err := c.ReadUint(f.label, bits.Len64(uint64(^T(0))), uint64(*f.p))
	if err != nil {
		return err
	}

	if v > f.limit {
		c.Printf("%s clamped to %d (%#x).\n", f.label, f.limit, f.limit)
		v = f.limit
	}

	*f.p = T(v)

	return nil
}

type intField struct {
	label    string
	p        *int32
	min, max int32
}

func intParam(label string, p *int32, min, max int32) *intField {
	return &intField{label: label, p: p, min: min, max: max}
}

func (f *intField) String() string {
	return fmt.Sprintf("%s: %d", f.label, *f.p)
}

func (f *intField) edit(c *Console) error {
	v, err := c.ReadInt(f.label, 32, int64(*f.p))
	if err != nil {
		return err
	}

	switch {
	case v > int64(f.max):
		c.Printf("%s clamped to %d.\n", f.label, f.max)
		v = int64(f.max)
	case v < int64(f.min):
		c.Printf("%s clamped to %d.\n", f.label, f.min)
		v = int64(f.min)
	}

	*f.p = int32(v)

	return nil
}

type boolField struct {
	label string
	p     *bool
}

func boolParam(label string, p *bool) *boolField {
	return &boolField{label: label, p: p}
}

func (f *boolField) String() string {
	return fmt.Sprintf("%s: %t", f.label, *f.p)
}

func (f *boolField) edit(c *Console) (err error) {
	*f.p, err = c.ReadBool(f.label, *f.p)
	return err
}
