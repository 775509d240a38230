// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Smartmontools drivedb.h database parser.

package drivedb

import (
	"io"
	"strconv"
	"strings"
	"text/scanner"
)

// ParseDrivedbH converts the C initialiser list of smartmontools' drivedb.h into drive models. The
// leading copyright comment is returned as a YAML comment header.
func ParseDrivedbH(src io.Reader) (string, []DriveModel) {
	var (
		s    scanner.Scanner
		prev rune
		idx  int
	)

	header := "# This file was generated from:\n"
	drives := make([]DriveModel, 0)
	items := make([]string, 5)

	s.Init(src)
	s.Mode ^= scanner.SkipComments
	s.Error = func(*scanner.Scanner, string) {}

	// Extremely simple state machine like processing of tokens.
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		if prev == 0 && tok == scanner.Comment {
			// First comment from drivedb.h should be copyright / license header. Convert C-style
			// comment to a YAML comment.
			for _, line := range strings.Split(s.TokenText(), "\n") {
				header += "# " + strings.TrimLeft(line, "/* ") + "\n"
			}
		} else if (prev == '{' || prev == ',') && tok == scanner.String {
			if idx < len(items) {
				items[idx] = strings.Trim(s.TokenText(), `"`)
			}
		} else if prev == scanner.String && tok == ',' {
			idx++
		} else if (prev == scanner.String || prev == scanner.Comment) && tok == scanner.String {
			if idx < len(items) {
				items[idx] += strings.Trim(s.TokenText(), `"`)
			}
		} else if tok == '}' {
			if items[1] != "" || items[0] != "" {
				drives = append(drives, newDriveModel(items))
			}
			items = make([]string, 5)
			idx = 0
		}

		if tok != scanner.Comment || prev == 0 {
			prev = tok
		}
	}

	return header, drives
}

func newDriveModel(items []string) DriveModel {
	dm := DriveModel{Presets: make(map[string]AttrConv)}

	if tmp, err := strconv.Unquote(`"` + items[0] + `"`); err == nil {
		dm.Family = tmp
	}

	if tmp, err := strconv.Unquote(`"` + items[1] + `"`); err == nil {
		dm.ModelRegex = tmp
	}

	if tmp, err := strconv.Unquote(`"` + items[2] + `"`); err == nil {
		dm.FirmwareRegex = tmp
	}

	if tmp, err := strconv.Unquote(`"` + items[3] + `"`); err == nil {
		dm.WarningMsg = tmp
	}

	// Split presets params so we can parse them.
	attrTokens := strings.Fields(items[4])

	for t := 0; t+1 < len(attrTokens); t += 2 {
		if attrTokens[t] == "-v" {
			attrs := strings.Split(attrTokens[t+1], ",")

			switch {
			case len(attrs) >= 3:
				dm.Presets[attrs[0]] = AttrConv{Conv: attrs[1], Name: attrs[2]}
			case len(attrs) == 2:
				dm.Presets[attrs[0]] = AttrConv{Conv: attrs[1]}
			}
		}
	}

	return dm
}
