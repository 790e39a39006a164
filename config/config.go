// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package config

import (
	"flag"
	"os"
)

var (
	Codec    string = "wasm"   // explicit default
	Strategy string = "select" // explicit default
	Export   string = "main"   // explicit default
	Output   string
	DataFile string
	HttpPort string = "8080" // explicit default
	LogLevel string = "info" // explicit default
)

func init() {
	flag.StringVar(
		&Codec,
		"codec",
		getenv("EXPRC_CODEC", Codec),
		"Output format of compile: wasm, wat or llvm. Defaults to environment variable EXPRC_CODEC.",
	)
	flag.StringVar(
		&Strategy,
		"strategy",
		getenv("EXPRC_STRATEGY", Strategy),
		"How conditionals are lowered: select or branch. Defaults to environment variable EXPRC_STRATEGY.",
	)
	flag.StringVar(
		&Export,
		"export",
		getenv("EXPRC_EXPORT", Export),
		"Name under which the compiled function is exported. Defaults to environment variable EXPRC_EXPORT.",
	)
	flag.StringVar(
		&Output,
		"o",
		Output,
		"Path compile writes to. Writes to standard output if empty.",
	)
	flag.StringVar(
		&DataFile,
		"data-file",
		getenv("EXPRC_DATA_FILE", DataFile),
		"Path to the compiled module cache. No caching if empty. Defaults to environment variable EXPRC_DATA_FILE.",
	)
	flag.StringVar(
		&HttpPort,
		"http-port",
		getenv("EXPRC_HTTP_PORT", HttpPort),
		"Port serve listens on. Defaults to environment variable EXPRC_HTTP_PORT.",
	)
	flag.StringVar(
		&LogLevel,
		"log-level",
		getenv("EXPRC_LOG_LEVEL", LogLevel),
		"One of panic, fatal, error, warn, info, debug or trace. Defaults to environment variable EXPRC_LOG_LEVEL.",
	)
}

func getenv(key string, deflt string) string {
	v := os.Getenv(key)
	if v == "" {
		return deflt
	}
	return v
}
