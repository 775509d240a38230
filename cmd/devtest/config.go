// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// YAMLResolver reads flag defaults from a YAML document of flag names and values, e.g.
//
//	timeout: 30s
//	drivedb: /usr/share/devtest/drivedb.yaml
//
// Values for a single sub-command may be nested under its name. Flag names may be written with
// underscores instead of dashes.
func YAMLResolver(r io.Reader) (kong.Resolver, error) {
	values := map[string]interface{}{}

	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return kong.ResolverFunc(func(ctx *kong.Context, parent *kong.Path, flag *kong.Flag) (interface{}, error) {
		names := []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")}

		if parent != nil && parent.Command != nil {
			if section, ok := values[parent.Command.Name].(map[interface{}]interface{}); ok {
				for _, name := range names {
					if v, ok := section[name]; ok {
						return fmt.Sprint(v), nil
					}
				}
			}
		}

		for _, name := range names {
			if v, ok := values[name]; ok {
				if _, nested := v.(map[interface{}]interface{}); !nested {
					return fmt.Sprint(v), nil
				}
			}
		}

		return nil, nil
	}), nil
}
