// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.

// Package engine runs encoded modules on a real WebAssembly runtime.
package engine

import (
	"context"
	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Run instantiates the binary module, calls export with no arguments
// and returns its single i32 result.
func Run(ctx context.Context, module []byte, export string) (int32, error) {

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, e := r.Instantiate(ctx, module)
	if e != nil {
		return 0, errors.Wrap(e, "instantiating module")
	}

	fn := mod.ExportedFunction(export)
	if fn == nil {
		return 0, errors.Errorf("export not found: %s", export)
	}

	def := fn.Definition()
	if len(def.ParamTypes()) != 0 {
		return 0, errors.Errorf("export %s takes %d parameters, want none", export, len(def.ParamTypes()))
	}
	if rs := def.ResultTypes(); len(rs) != 1 || rs[0] != api.ValueTypeI32 {
		return 0, errors.Errorf("export %s does not return a single i32", export)
	}

	out, e := fn.Call(ctx)
	if e != nil {
		return 0, errors.Wrapf(e, "calling export %s", export)
	}

	return api.DecodeI32(out[0]), nil
}
