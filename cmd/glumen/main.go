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

// glumen is a light consensus node for the Lumen network.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"syscall"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/lumen-chain/go-lumen/chaindb"
	"github.com/lumen-chain/go-lumen/chaindb/leveldb"
	"github.com/lumen-chain/go-lumen/chaindb/memorydb"
	"github.com/lumen-chain/go-lumen/consensus/nipopow"
	"github.com/lumen-chain/go-lumen/core/types"
	"github.com/lumen-chain/go-lumen/light"
	"github.com/lumen-chain/go-lumen/log"
	"github.com/lumen-chain/go-lumen/params"
)

const clientIdentifier = "glumen"

var (
	// Git SHA1 commit hash and date of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""

	app = cli.NewApp()

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the chain database (memory-backed if empty)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	devinFlag = cli.BoolFlag{
		Name:  "devin",
		Usage: "Devin network: pre-configured test network",
	}
	devMineFlag = cli.BoolFlag{
		Name:  "dev.mine",
		Usage: "Continuously seal blocks on top of the local head (development only)",
	}
)

func init() {
	app.Name = clientIdentifier
	app.Usage = "the Lumen light consensus node"
	app.Version = params.VersionWithCommit(gitCommit, gitDate)
	app.Flags = []cli.Flag{
		configFileFlag,
		dataDirFlag,
		verbosityFlag,
		devinFlag,
		devMineFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:        "version",
			Usage:       "Print version numbers",
			Category:    "MISCELLANEOUS COMMANDS",
			Action:      version,
			Description: `The output of this command is supposed to be machine-readable.`,
		},
		{
			Name:        "dumpconfig",
			Usage:       "Show configuration values",
			Category:    "MISCELLANEOUS COMMANDS",
			Action:      dumpConfig,
			Description: `The dumpconfig command shows configuration values.`,
		},
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	app.Before = func(ctx *cli.Context) error {
		lvl := log.Lvl(ctx.GlobalInt(verbosityFlag.Name))
		handler := log.LvlFilterHandler(lvl, log.Root().GetHandler())
		log.Root().SetHandler(handler)
		return nil
	}
	app.Action = glumen
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func version(ctx *cli.Context) error {
	fmt.Println(clientIdentifier)
	fmt.Println("Version:", params.VersionWithMeta)
	if gitCommit != "" {
		fmt.Println("Git Commit:", gitCommit)
	}
	if gitDate != "" {
		fmt.Println("Git Commit Date:", gitDate)
	}
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	return nil
}

// glumen is the main entry point into the system: it starts the light chain
// and blocks until it is interrupted.
func glumen(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := nipopow.New(nipopow.Config{})
	chain, err := light.NewLightChain(db, cfg.Chain, engine)
	if err != nil {
		return err
	}
	defer chain.Stop()

	// Follow head changes.
	heads := make(chan light.ChainHeadEvent, 16)
	sub := chain.SubscribeChainHeadEvent(heads)
	defer sub.Unsubscribe()
	go func() {
		for ev := range heads {
			log.Info("New chain head", "number", ev.Block.Number(), "hash", ev.Block.Hash().TerminalString())
		}
	}()

	stop := make(chan struct{})
	if ctx.GlobalBool(devMineFlag.Name) {
		go mineLoop(chain, engine, stop)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-interrupt
	close(stop)
	log.Info("Shutting down")
	return nil
}

func openDatabase(cfg glumenConfig) (chaindb.KeyValueStore, error) {
	if cfg.Node.DataDir == "" {
		log.Info("Using in-memory chain database")
		return memorydb.New(), nil
	}
	path := filepath.Join(cfg.Node.DataDir, clientIdentifier, "chaindata")
	return leveldb.New(path, cfg.Node.DatabaseCache, cfg.Node.DatabaseHandles, false)
}

// mineLoop seals blocks on top of the local head, submitting each through the
// regular header path. It exists so a development node produces a chain
// without any network attached.
func mineLoop(chain *light.LightChain, engine *nipopow.Nipopow, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		parent := chain.Head()
		target, err := engine.CalcNextTarget(chain, parent)
		if err != nil {
			// Window not filled yet, keep the parent's target.
			target = parent.Target()
		}
		now := uint64(time.Now().Unix())
		if now <= parent.Time() {
			now = parent.Time() + 1
		}
		header := &types.Header{
			ParentHash:    parent.Hash(),
			InterlinkHash: parent.NextInterlink(target).Hash(),
			Number:        parent.Number() + 1,
			Time:          now,
			NBits:         types.TargetToCompact(target),
		}
		sealed, err := engine.Seal(header, stop)
		if err != nil {
			return
		}
		if code, err := chain.PushHeader(sealed); err != nil {
			log.Error("Sealed header rejected", "err", err)
			return
		} else if code != light.OkExtended {
			log.Warn("Sealed header not extending", "code", code)
		}
	}
}
