// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package err

import (
	"fmt"
	"strings"
)

type Error interface {
	Error() string  // should be proxy to String() (to implement error interface)
	String() string // human readable string
	Child() Error   // may be nil
}

func heading(title string) string {
	return title + "\n" + strings.Repeat("=", len(title)) + "\n"
}

func section(title, body string) string {
	return title + "\n" + strings.Repeat("-", len(title)) + "\n" + body + "\n\n"
}

// location renders an annotation, or nothing if it carries no information.
func location(a interface{}) string {
	if a == nil {
		return ""
	}
	if _, ok := a.(struct{}); ok {
		return ""
	}
	if s, ok := a.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(a)
}
