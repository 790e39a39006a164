// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package api

import (
	"fmt"
	"github.com/karmarun/exprc/codec"
	"github.com/karmarun/exprc/codec/binary"
	"github.com/karmarun/exprc/db"
	"github.com/karmarun/exprc/engine"
	"github.com/karmarun/exprc/kvm"
	"github.com/karmarun/exprc/kvm/err"
	"github.com/karmarun/exprc/kvm/inst"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
	"path"
	"runtime/debug"
	"strings"
	"sync"

	// registered codecs
	_ "github.com/karmarun/exprc/codec/json"
	_ "github.com/karmarun/exprc/codec/llvm"
	_ "github.com/karmarun/exprc/codec/text"
)

type Payload []byte

func (p Payload) Close() {
	copy(p, ZeroPayload)
	PayloadPool.Put(p[:MaxPayloadBytes])
}

const MaxPayloadBytes = 64 * 1024 // 64KB of source

var (
	PayloadPool = &sync.Pool{
		New: func() interface{} {
			return make(Payload, MaxPayloadBytes, MaxPayloadBytes)
		},
	}
	ZeroPayload = make(Payload, MaxPayloadBytes, MaxPayloadBytes)
)

const (
	CompilePrefix = `compile`
	CheckPrefix   = `check`
	EvalPrefix    = `eval`
	RunPrefix     = `run`
)

const (
	CodecHeader    = `X-Exprc-Codec`
	StrategyHeader = `X-Exprc-Strategy`
	DefaultCodec   = `wasm`
)

// Handler serves the compiler over HTTP. Store may be nil, in which
// case nothing is cached. Target supplies defaults for every request.
type Handler struct {
	Store  *db.Store
	Target kvm.Target
}

func (h Handler) ServeHTTP(rw http.ResponseWriter, rq *http.Request) {

	// CORS headers for browsers
	rw.Header().Set("Access-Control-Allow-Headers", rq.Header.Get("Access-Control-Request-Headers"))
	rw.Header().Set("Access-Control-Allow-Methods", rq.Header.Get("Access-Control-Request-Method"))
	rw.Header().Set("Access-Control-Allow-Origin", "*")

	if rq.Method == http.MethodOptions {
		return // CORS pre-flight
	}

	path := strings.Trim(path.Clean(rq.URL.Path), "/")

	if rq.Method == http.MethodGet && path == "" { // health checks
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte(`exprc ` + kvm.Version))
		return
	}

	if rq.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	log := logrus.WithField("path", path)

	defer func() {
		if v := recover(); v != nil {
			log.WithField("panic", v).Error("internal error")
			log.Debug(string(debug.Stack()))
			rw.WriteHeader(http.StatusInternalServerError)
			if e, ok := v.(err.Error); ok {
				rw.Write([]byte(e.String()))
			}
		}
	}()

	payload, complete := payloadFromRequest(rq)
	defer payload.Close()

	if !complete {
		rw.WriteHeader(http.StatusRequestEntityTooLarge)
		rw.Write([]byte(fmt.Sprintf(`source exceeds %d bytes`, MaxPayloadBytes)))
		return
	}
	source := string(payload)

	switch path {

	case CheckPrefix:
		typed, e := kvm.Check(source)
		if e != nil {
			writeError(rw, e)
			return
		}
		rw.Write([]byte(typed.Annotation().String()))

	case EvalPrefix:
		value, _, e := kvm.Eval(source)
		if e != nil {
			writeError(rw, e)
			return
		}
		rw.Write([]byte(value.String()))

	case CompilePrefix:
		h.compile(rw, rq, log, source)

	case RunPrefix:
		target, ok := h.target(rw, rq)
		if !ok {
			return
		}
		m, e := kvm.Compile(source, target)
		if e != nil {
			writeError(rw, e)
			return
		}
		out, e := engine.Run(rq.Context(), binary.Encode(m), m.Export)
		if e != nil {
			log.WithError(e).Error("running module")
			rw.WriteHeader(http.StatusInternalServerError)
			rw.Write([]byte(e.Error()))
			return
		}
		fmt.Fprintf(rw, "%d", out)

	default:
		rw.WriteHeader(http.StatusNotFound)

	}
}

func (h Handler) target(rw http.ResponseWriter, rq *http.Request) (kvm.Target, bool) {
	target := h.Target
	if target.Export == "" {
		target.Export = inst.DefaultExport
	}
	if s := rq.Header.Get(StrategyHeader); s != "" {
		strategy, e := kvm.ParseStrategy(s)
		if e != nil {
			rw.WriteHeader(http.StatusBadRequest)
			rw.Write([]byte(fmt.Sprintf(`invalid strategy requested (%s header): %s`, StrategyHeader, e)))
			return target, false
		}
		target.Strategy = strategy
	}
	return target, true
}

func (h Handler) compile(rw http.ResponseWriter, rq *http.Request, log *logrus.Entry, source string) {

	name := rq.Header.Get(CodecHeader)
	if name == "" {
		name = DefaultCodec
	}

	cdc := codec.Get(name)
	if cdc == nil {
		msg := fmt.Sprintf(`invalid codec requested (%s header). available codecs: %s`, CodecHeader, strings.Join(codec.Available(), ", "))
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte(msg))
		return
	}

	target, ok := h.target(rw, rq)
	if !ok {
		return
	}

	log = log.WithFields(logrus.Fields{"codec": name, "strategy": target.Strategy.String()})

	var key []byte
	if h.Store != nil {
		key = db.Key(source, name, target.Strategy.String(), target.Export)
		cached, e := h.Store.Get(key)
		if e != nil {
			log.WithError(e).Warn("module cache unavailable")
		} else if cached != nil {
			log.Debug("cache hit")
			rw.Header().Set("Content-Type", cdc.MediaType())
			rw.Write(cached)
			return
		}
	}

	m, e := kvm.Compile(source, target)
	if e != nil {
		writeError(rw, e)
		return
	}

	bs := cdc.Encode(m)

	if h.Store != nil {
		if e := h.Store.Put(key, bs); e != nil {
			log.WithError(e).Warn("caching module")
		}
	}

	rw.Header().Set("Content-Type", cdc.MediaType())
	rw.Write(bs)
}

// writeError responds to syntax and type errors in the submitted source.
func writeError(rw http.ResponseWriter, e error) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(http.StatusUnprocessableEntity)
	if ke, ok := e.(err.Error); ok {
		rw.Write([]byte(ke.String()))
		return
	}
	rw.Write([]byte(e.Error()))
}

func payloadFromRequest(rq *http.Request) (Payload, bool) {
	defer rq.Body.Close()
	return payloadFromReader(rq.Body)
}

// payloadFromReader reports false if r holds more than MaxPayloadBytes.
func payloadFromReader(r io.Reader) (Payload, bool) {
	payload := PayloadPool.Get().(Payload)
	readLength := 0
	for readLength < MaxPayloadBytes {
		n, e := r.Read(payload[readLength:])
		readLength += n
		if e != nil {
			return payload[:readLength], true // io.EOF or a broken request, either way we're done
		}
	}
	var extra [1]byte
	if n, _ := io.ReadFull(r, extra[:]); n > 0 {
		return payload[:readLength], false
	}
	return payload[:readLength], true
}
