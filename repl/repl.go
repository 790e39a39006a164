// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package repl is the interactive front end of the compiler.
package repl

import (
	"context"
	"errors"
	"fmt"
	"github.com/karmarun/exprc/codec/binary"
	"github.com/karmarun/exprc/codec/llvm"
	"github.com/karmarun/exprc/codec/text"
	"github.com/karmarun/exprc/engine"
	"github.com/karmarun/exprc/kvm"
	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"strings"
)

const (
	Prompt = "exprc> "
	Help   = `enter an expression to evaluate it, or one of
  :type EXPR          print the type of EXPR
  :ast EXPR           print the elaborated tree of EXPR
  :wat EXPR           print the compiled module as WAT
  :llvm EXPR          print the compiled module as LLVM IR
  :run EXPR           compile EXPR to wasm and execute it
  :strategy NAME      lower conditionals with select or branch
  :quit               leave`
)

// ErrQuit is returned by Session.Eval for :quit.
var ErrQuit = errors.New("quit")

type Session struct {
	Target kvm.Target
}

// Eval runs a single line of input and returns what should be printed.
// Syntax and type errors are returned as errors.
func (s *Session) Eval(line string) (string, error) {

	line = strings.TrimSpace(line)

	if line == "" {
		return "", nil
	}

	if !strings.HasPrefix(line, ":") {
		value, model, e := kvm.Eval(line)
		if e != nil {
			return "", e
		}
		return value.String() + " : " + model.String(), nil
	}

	command, arg := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		command, arg = line[:i], strings.TrimSpace(line[i+1:])
	}

	switch command {

	case ":quit", ":q":
		return "", ErrQuit

	case ":help", ":h":
		return Help, nil

	case ":type", ":t":
		typed, e := kvm.Check(arg)
		if e != nil {
			return "", e
		}
		return typed.Annotation().String(), nil

	case ":ast":
		typed, e := kvm.Check(arg)
		if e != nil {
			return "", e
		}
		return kvm.Dump(typed), nil

	case ":strategy":
		if arg == "" {
			return s.Target.Strategy.String(), nil
		}
		strategy, e := kvm.ParseStrategy(arg)
		if e != nil {
			return "", e
		}
		s.Target.Strategy = strategy
		return "strategy: " + strategy.String(), nil

	case ":wat":
		m, e := kvm.Compile(arg, s.Target)
		if e != nil {
			return "", e
		}
		return strings.TrimSuffix(text.Render(m), "\n"), nil

	case ":llvm":
		m, e := kvm.Compile(arg, s.Target)
		if e != nil {
			return "", e
		}
		return strings.TrimSuffix(llvm.Translate(m).String(), "\n"), nil

	case ":run":
		m, e := kvm.Compile(arg, s.Target)
		if e != nil {
			return "", e
		}
		out, e := engine.Run(context.Background(), binary.Encode(m), m.Export)
		if e != nil {
			return "", e
		}
		return fmt.Sprintf("%d", out), nil

	}

	return "", fmt.Errorf("unknown command %s, try :help", command)
}

// Run reads lines from the terminal until :quit or end of input.
// History is loaded from and saved to historyPath if it is not empty.
func Run(s *Session, historyPath string) error {

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, e := os.Open(historyPath); e == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, e := os.Create(historyPath)
			if e != nil {
				logrus.WithError(e).Warn("saving history")
				return
			}
			ln.WriteHistory(f)
			f.Close()
		}()
	}

	for {
		line, e := ln.Prompt(Prompt)
		if e == io.EOF || e == liner.ErrPromptAborted {
			fmt.Println()
			return nil
		}
		if e != nil {
			return e
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}

		out, e := s.Eval(line)
		if e == ErrQuit {
			return nil
		}
		if e != nil {
			fmt.Fprintln(os.Stderr, errorString(e))
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}

func errorString(e error) string {
	if s, ok := e.(fmt.Stringer); ok {
		return strings.TrimRight(s.String(), "\n")
	}
	return e.Error()
}
