// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Interactive device command tester.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/aaru-dps/devtest/devtest"
	"github.com/aaru-dps/devtest/drivedb"
	"github.com/aaru-dps/devtest/megaraid"
	"github.com/aaru-dps/devtest/nvme"
	"github.com/aaru-dps/devtest/scsi"
)

const (
	programName = "devtest"
	programDesc = "Send individual ATA, SCSI and NVMe commands to a device and inspect the results"

	defaultDrivedbURL = "https://www.smartmontools.org/export/HEAD/trunk/smartmontools/drivedb.h"
)

var nvmeDeviceRe = regexp.MustCompile(`^/dev/nvme[0-9]+`)

// Globals are the flags shared by all sub-commands.
type Globals struct {
	Timeout time.Duration `default:"15s" env:"DEVTEST_TIMEOUT" help:"Device command timeout."`
	DriveDb string        `name:"drivedb" default:"drivedb.yaml" env:"DEVTEST_DRIVEDB" type:"path" help:"Drive database used to name SMART attributes."`
	Metrics string        `env:"DEVTEST_METRICS" type:"path" help:"Write command statistics to this file on exit."`
	Debug   bool          `env:"DEVTEST_DEBUG" help:"Log every command sent to the device."`
}

type CLI struct {
	Globals

	Test      testCmd      `cmd:"" default:"withargs" help:"Interactively send commands to a device."`
	Scan      scanCmd      `cmd:"" help:"List the devices that can be tested."`
	Mkdrivedb mkdrivedbCmd `cmd:"" help:"Convert a smartmontools drivedb.h to the YAML drive database."`
}

type testCmd struct {
	Device string `arg:"" help:"Device to test, e.g. /dev/sg0, /dev/nvme0 or megaraid0_4."`
}

func (t *testCmd) Run(g *Globals) error {
	fmt.Println("Go devtest")
	fmt.Printf("Built with %s on %s (%s)\n\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	checkCaps()

	stats := devtest.NewStats()
	c := devtest.NewTerminalConsole(os.Stdin, os.Stdout)

	s, closeDevice, err := openSession(c, t.Device, g, stats)
	if err != nil {
		return err
	}
	defer closeDevice()

	err = s.Run()

	if g.Metrics != "" {
		if werr := stats.WriteFile(g.Metrics); werr != nil && err == nil {
			err = werr
		}
	}

	return err
}

// openSession picks the transport from the device name: NVMe character devices, MegaRAID physical
// disks named megaraidH_D, or SG_IO for anything else.
func openSession(c *devtest.Console, path string, g *Globals, stats *devtest.Stats) (*devtest.Session, func() error, error) {
	if nvmeDeviceRe.MatchString(path) {
		d := nvme.NewNVMeDevice(path)
		if err := d.Open(); err != nil {
			return nil, nil, err
		}
		return devtest.NewNVMeSession(c, path, d, stats), d.Close, nil
	}

	var (
		dev *scsi.Device
		err error
	)

	if _, _, ok := megaraid.ParseDeviceName(path); ok {
		var t *megaraid.Transport
		if t, err = megaraid.Open(path); err == nil {
			dev = scsi.NewDevice(t, g.Timeout)
		}
	} else {
		dev, err = scsi.Open(path, g.Timeout)
	}
	if err != nil {
		return nil, nil, err
	}

	db, err := drivedb.OpenDriveDb(g.DriveDb)
	if err != nil {
		zap.L().Warn("drive database not loaded, SMART attributes will use default names",
			zap.String("path", g.DriveDb), zap.Error(err))
	}

	return devtest.NewSession(c, path, dev, db, stats), dev.Close, nil
}

type scanCmd struct{}

func (cmd *scanCmd) Run(g *Globals) error {
	checkCaps()
	return devtest.Scan(os.Stdout, g.Timeout)
}

type mkdrivedbCmd struct {
	In  string `type:"existingfile" help:"Local drivedb.h to convert instead of fetching it."`
	URL string `name:"url" default:"${drivedb_url}" help:"Where to fetch drivedb.h from."`
	Out string `default:"drivedb.yaml" type:"path" help:"Output YAML file."`
}

func (cmd *mkdrivedbCmd) Run() error {
	var reader io.Reader

	if cmd.In != "" {
		f, err := os.Open(cmd.In)
		if err != nil {
			return errors.Wrap(err, "cannot read drivedb")
		}

		defer f.Close()
		fmt.Printf("Reading from local file %s\n", f.Name())
		reader = f
	} else {
		resp, err := http.Get(cmd.URL)
		if err != nil {
			return errors.Wrap(err, "cannot fetch drivedb")
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("cannot fetch drivedb: %s", resp.Status)
		}
		fmt.Printf("Reading from fetched drivedb %s\n", cmd.URL)
		reader = resp.Body
	}

	header, drives := drivedb.ParseDrivedbH(reader)
	fmt.Printf("Parsed drivedb.h - %d entries\n", len(drives))

	f, err := os.Create(cmd.Out)
	if err != nil {
		return errors.Wrap(err, "cannot create output")
	}

	db := drivedb.DriveDb{Drives: drives}
	if err := db.Save(f, header); err != nil {
		f.Close()
		return errors.Wrap(err, "error encoding yaml")
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Successfully wrote output to %s\n", cmd.Out)

	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	return cfg.Build()
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{"drivedb_url": defaultDrivedbURL},
		kong.Configuration(YAMLResolver, "/etc/devtest.yaml", "~/.config/devtest.yaml"),
	}, options...)

	return kong.New(cli, options...)
}

func main() {
	var cli CLI

	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger, err := newLogger(cli.Debug)
	ctx.FatalIfErrorf(err)
	zap.ReplaceGlobals(logger)

	err = ctx.Run(&cli.Globals)
	logger.Sync()
	ctx.FatalIfErrorf(err)
}
