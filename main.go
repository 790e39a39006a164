// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/karmarun/exprc/api"
	"github.com/karmarun/exprc/codec"
	"github.com/karmarun/exprc/codec/binary"
	"github.com/karmarun/exprc/config"
	"github.com/karmarun/exprc/db"
	"github.com/karmarun/exprc/engine"
	"github.com/karmarun/exprc/kvm"
	"github.com/karmarun/exprc/repl"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	// registered codecs
	_ "github.com/karmarun/exprc/codec/json"
	_ "github.com/karmarun/exprc/codec/llvm"
	_ "github.com/karmarun/exprc/codec/text"
)

const usage = `usage: exprc [flags] <command> [file]

commands:
  check     print the type of the program
  eval      evaluate the program with the interpreter
  compile   compile the program (see -codec, -o)
  run       compile the program to wasm and execute it
  repl      start an interactive session
  serve     serve the compiler over HTTP (see -http-port, -data-file)

The program is read from file, or from standard input if file is omitted.

flags:
`

func main() {

	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	level, e := logrus.ParseLevel(config.LogLevel)
	if e != nil {
		logrus.Fatalln(e)
	}
	logrus.SetLevel(level)

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	strategy, e := kvm.ParseStrategy(config.Strategy)
	if e != nil {
		logrus.Fatalln(e)
	}
	target := kvm.Target{Strategy: strategy, Export: config.Export}

	command, args := flag.Arg(0), flag.Args()[1:]

	switch command {
	case "check", "eval", "compile", "run":
		e = source(command, args, target)
	case "repl":
		e = repl.Run(&repl.Session{Target: target}, historyPath())
	case "serve":
		e = serve(target)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if e != nil {
		fmt.Fprintln(os.Stderr, errorString(e))
		os.Exit(1)
	}
}

func source(command string, args []string, target kvm.Target) error {

	src, e := readSource(args)
	if e != nil {
		return e
	}

	switch command {

	case "check":
		typed, e := kvm.Check(src)
		if e != nil {
			return e
		}
		fmt.Println(typed.Annotation())

	case "eval":
		value, _, e := kvm.Eval(src)
		if e != nil {
			return e
		}
		fmt.Println(value)

	case "compile":
		cdc := codec.Get(config.Codec)
		if cdc == nil {
			return errors.Errorf("unknown codec %s, available codecs: %s", config.Codec, strings.Join(codec.Available(), ", "))
		}
		m, e := kvm.Compile(src, target)
		if e != nil {
			return e
		}
		bs := cdc.Encode(m)
		if config.Output == "" {
			_, e = os.Stdout.Write(bs)
			return errors.Wrap(e, "writing output")
		}
		logrus.WithFields(logrus.Fields{"codec": config.Codec, "path": config.Output}).Debug("writing module")
		return errors.Wrapf(os.WriteFile(config.Output, bs, 0644), "writing %s", config.Output)

	case "run":
		m, e := kvm.Compile(src, target)
		if e != nil {
			return e
		}
		out, e := engine.Run(context.Background(), binary.Encode(m), m.Export)
		if e != nil {
			return e
		}
		fmt.Println(out)

	}

	return nil
}

func readSource(args []string) (string, error) {
	if len(args) > 1 {
		return "", errors.New("expected at most one source file")
	}
	if len(args) == 0 || args[0] == "-" {
		bs, e := io.ReadAll(os.Stdin)
		return string(bs), errors.Wrap(e, "reading standard input")
	}
	bs, e := os.ReadFile(args[0])
	return string(bs), errors.Wrapf(e, "reading %s", args[0])
}

func serve(target kvm.Target) error {

	handler := api.Handler{Target: target}

	if config.DataFile != "" {
		store, e := db.Open(config.DataFile)
		if e != nil {
			return e
		}
		defer func() {
			if e := store.Close(); e != nil {
				logrus.WithError(e).Error("closing module cache")
			}
		}()
		handler.Store = store
		if n, e := store.Len(); e == nil {
			logrus.WithFields(logrus.Fields{"path": config.DataFile, "modules": n}).Info("opened module cache")
		}
	}

	server := &http.Server{
		Addr:    ":" + config.HttpPort,
		Handler: handler,
	}

	done := make(chan error, 1)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		logrus.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- server.Shutdown(ctx)
	}()

	logrus.WithFields(logrus.Fields{
		"port":     config.HttpPort,
		"strategy": target.Strategy.String(),
		"cache":    config.DataFile,
	}).Info("starting exprc " + kvm.Version)

	if e := server.ListenAndServe(); e != http.ErrServerClosed {
		return errors.Wrap(e, "HTTP")
	}
	return errors.Wrap(<-done, "shutting down")
}

func historyPath() string {
	home, e := os.UserHomeDir()
	if e != nil {
		return ""
	}
	return filepath.Join(home, ".exprc_history")
}

func errorString(e error) string {
	if s, ok := errors.Cause(e).(fmt.Stringer); ok {
		return strings.TrimRight(s.String(), "\n")
	}
	return e.Error()
}
