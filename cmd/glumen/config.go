// Copyright 2021 by the Authors
// This file is part of go-lumen.
//
// go-lumen is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-lumen is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-lumen. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/lumen-chain/go-lumen/params"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// nodeConfig holds the node-level settings of a glumen instance.
type nodeConfig struct {
	// DataDir is the directory the chain database lives in. An empty value
	// keeps the whole chain in memory.
	DataDir string

	// DatabaseCache is the memory allowance handed to the database, in MiB.
	DatabaseCache int

	// DatabaseHandles is the file handle allowance of the database.
	DatabaseHandles int
}

// glumenConfig aggregates all configuration of a glumen instance.
type glumenConfig struct {
	Chain *params.ChainConfig
	Node  nodeConfig
}

func defaultConfig() glumenConfig {
	return glumenConfig{
		Chain: params.MainnetChainConfig,
		Node: nodeConfig{
			DatabaseCache:   128,
			DatabaseHandles: 512,
		},
	}
}

func loadConfigFile(file string, cfg *glumenConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig assembles the instance configuration from defaults, config file
// and command line flags, in ascending priority.
func makeConfig(ctx *cli.Context) (glumenConfig, error) {
	cfg := defaultConfig()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.GlobalIsSet(dataDirFlag.Name) {
		cfg.Node.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(devinFlag.Name) {
		cfg.Chain = params.DevinChainConfig
	}
	return cfg, nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
