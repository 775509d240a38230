// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Package drivedb reads the smartmontools drive database, which maps ATA model numbers to drive
// families and SMART attribute presets.
package drivedb

import (
	"io"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// SMART attribute conversion rule
type AttrConv struct {
	Conv string `yaml:"conv,omitempty"`
	Name string `yaml:"name,omitempty"`
}

type DriveModel struct {
	Family         string              `yaml:"family,omitempty"`
	ModelRegex     string              `yaml:"model_regex,omitempty"`
	FirmwareRegex  string              `yaml:"firmware_regex,omitempty"`
	WarningMsg     string              `yaml:"warning,omitempty"`
	Presets        map[string]AttrConv `yaml:"presets,omitempty"`
	CompiledRegexp *regexp.Regexp      `yaml:"-"`
}

type DriveDb struct {
	Drives []DriveModel `yaml:"drives"`
}

// LookupDrive returns the most appropriate DriveModel for a given ATA IDENTIFY model number.
func (db *DriveDb) LookupDrive(ident []byte) DriveModel {
	model := DriveModel{Presets: make(map[string]AttrConv)}
	ident = []byte(strings.TrimSpace(string(ident)))

	for _, d := range db.Drives {
		// Skip placeholder entry
		if strings.HasPrefix(d.Family, "$Id") {
			continue
		}

		if d.Family == "DEFAULT" {
			model.Family = d.Family
			for id, p := range d.Presets {
				model.Presets[id] = p
			}
			continue
		}

		if d.CompiledRegexp != nil && d.CompiledRegexp.Match(ident) {
			model.Family = d.Family
			model.ModelRegex = d.ModelRegex
			model.FirmwareRegex = d.FirmwareRegex
			model.WarningMsg = d.WarningMsg
			model.CompiledRegexp = d.CompiledRegexp

			for id, p := range d.Presets {
				if _, exists := model.Presets[id]; exists {
					// Some drives override the conv but don't specify a name, so copy it from default
					if p.Name == "" {
						p.Name = model.Presets[id].Name
					}
				}
				model.Presets[id] = AttrConv{Name: p.Name, Conv: p.Conv}
			}

			break
		}
	}

	return model
}

// Load unmarshalls a YAML-formatted drive database and compiles the model regexps. Entries with
// a regexp that does not compile are kept but never match.
func Load(r io.Reader) (DriveDb, error) {
	var db DriveDb

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&db); err != nil {
		return db, err
	}

	for i, d := range db.Drives {
		re, err := regexp.Compile(d.ModelRegex)
		if err != nil {
			zap.S().Debugw("skipping drivedb entry", "family", d.Family, "error", err)
			continue
		}
		db.Drives[i].CompiledRegexp = re
	}

	return db, nil
}

// OpenDriveDb opens a YAML-formatted drive database, unmarshalls it, and returns a DriveDb.
func OpenDriveDb(dbfile string) (DriveDb, error) {
	f, err := os.Open(dbfile)
	if err != nil {
		return DriveDb{}, err
	}

	defer f.Close()

	return Load(f)
}

// Save writes the database as YAML, preceded by header (which should already be commented).
func (db *DriveDb) Save(w io.Writer, header string) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	return yaml.NewEncoder(w).Encode(db)
}
