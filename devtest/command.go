// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"fmt"
	"time"

	"github.com/aaru-dps/devtest/scsi"
)

// view is an extra way of looking at a command outcome, e.g. decoding the returned registers.
type view struct {
	name string
	show func(c *Console)
}

// outcome is what one send of a command produced. The buffer is only kept until the next send.
type outcome struct {
	buffer   []byte
	failed   bool
	duration time.Duration
	err      error
	views    []view
}

// command is one device command screen: editable parameters and the function sending it.
type command struct {
	name   string
	fields []field
	send   func() outcome
}

// senseView decodes the sense data returned with a SCSI or SAT command.
func senseView(sense []byte) view {
	return view{"Decode sense.", func(c *Console) {
		if len(sense) == 0 {
			c.Println("No sense data was returned.")
			return
		}

		c.HexDump(sense)

		if s, ok := scsi.DecodeSense(sense); ok {
			c.Println(s.String())
		} else {
			c.Println("Sense data is not in fixed or descriptor format.")
		}
	}}
}

func (s *Session) editFields(cmd command) error {
	for _, f := range cmd.fields {
		if err := f.edit(s.c); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) sendCommand(family string, cmd command) outcome {
	o := cmd.send()
	s.stats.Observe(family, cmd.name, o)

	return o
}

func resultHeader(name string, o outcome) []string {
	h := []string{
		fmt.Sprintf("%s took %s.", name, o.duration),
		fmt.Sprintf("Sense is %t.", o.failed),
	}

	if o.buffer == nil {
		h = append(h, "Buffer is null.")
	} else {
		h = append(h, fmt.Sprintf("Buffer is %d bytes.", len(o.buffer)))
	}

	if o.err != nil {
		h = append(h, fmt.Sprintf("Error: %v", o.err))
	}

	return h
}

// runCommand drives the parameters screen, the send and the results screen of cmd. Commands
// without parameters are sent straight away.
func (s *Session) runCommand(family, parent string, cmd command) error {
	paramsTitle := fmt.Sprintf("Parameters for %s command:", cmd.name)
	resultsTitle := fmt.Sprintf("%s results:", cmd.name)

	for {
		if len(cmd.fields) > 0 {
			header := make([]string, 0, len(cmd.fields))
			for _, f := range cmd.fields {
				header = append(header, f.String())
			}

			n, err := s.c.Menu(paramsTitle, header, []string{"Change parameters.", "Send command."}, parent)
			if err != nil {
				return err
			}

			switch n {
			case 0:
				return nil
			case 1:
				if err := s.editFields(cmd); err != nil {
					return err
				}
				continue
			}
		}

		o := s.sendCommand(family, cmd)

	results:
		for {
			items := []string{"Print buffer."}
			for _, v := range o.views {
				items = append(items, v.name)
			}
			items = append(items, "Send command again.")
			if len(cmd.fields) > 0 {
				items = append(items, "Change parameters.")
			}

			n, err := s.c.Menu(resultsTitle, resultHeader(cmd.name, o), items, parent)
			if err != nil {
				return err
			}

			switch {
			case n == 0:
				return nil
			case n == 1:
				if o.buffer == nil {
					s.c.Println("Buffer is null.")
				} else {
					s.c.HexDump(o.buffer)
				}
			case n <= 1+len(o.views):
				o.views[n-2].show(s.c)
			case n == 2+len(o.views):
				o = s.sendCommand(family, cmd)
				continue
			default:
				if err := s.editFields(cmd); err != nil {
					return err
				}
				break results
			}

			if err := s.c.Pause(); err != nil {
				return err
			}
		}
	}
}
