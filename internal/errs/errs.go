package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies failures by how the caller must react to them.
type Kind string

const (
	// Transport covers network failures, timeouts and non-2xx responses.
	Transport Kind = "transport"
	// Parse means no version could be extracted from the fetched text.
	Parse Kind = "parse"
	// Config means a tracked project is missing required fields.
	Config Kind = "config"
	// Relocation means the extracted package could not be moved into place.
	Relocation Kind = "relocation"
	// Reactivation means the plugin was moved but could not be re-activated.
	Reactivation Kind = "reactivation"
)

// Error is the error type returned by the resolver, checker and installer.
type Error struct {
	Kind    Kind
	Op      string
	Slug    string
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Slug != "" {
		fmt.Fprintf(&b, "[%s] ", e.Slug)
	}
	b.WriteString(string(e.Kind))
	b.WriteString(" error")
	if len(e.Missing) > 0 {
		b.WriteString(": missing required params: ")
		b.WriteString(strings.Join(e.Missing, ","))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func TransportError(op string, err error) error {
	return &Error{Kind: Transport, Op: op, Err: err}
}

func ParseError(slug string, err error) error {
	return &Error{Kind: Parse, Op: "extract version", Slug: slug, Err: err}
}

func ConfigError(slug string, missing []string) error {
	return &Error{Kind: Config, Op: "validate config", Slug: slug, Missing: missing}
}

func RelocationError(slug string, err error) error {
	return &Error{Kind: Relocation, Op: "relocate", Slug: slug, Err: err}
}

func ReactivationError(slug string, err error) error {
	return &Error{Kind: Reactivation, Op: "reactivate", Slug: slug, Err: err}
}

// Is reports whether any error in err's chain is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ---- user facing messages ----

type Code string

const (
	AllWithNamedProjects Code = "ALL_WITH_NAMED_PROJECTS"
	ProvideSlugsOrAll    Code = "PROVIDE_SLUGS_OR_ALL"
	UnknownProject       Code = "UNKNOWN_PROJECT"
	InvalidProject       Code = "INVALID_PROJECT"
)

var messages = map[Code]string{
	AllWithNamedProjects: `Invalid flag combination: cannot use --all with named projects

Usage:
  - %[1]s every project listed in plugup.yml:
      plugup %[2]s --all
  - %[1]s only specific projects:
      plugup %[2]s my-plugin/my-plugin.php

Reason:
  --all targets everything, named args target a subset.`,

	ProvideSlugsOrAll: `Missing targets: provide project slugs or use --all

Examples:
  plugup %[2]s my-plugin/my-plugin.php   # %[1]s a specific project
  plugup %[2]s --all                     # %[1]s all projects listed in plugup.yml`,

	UnknownProject: `Unknown project %[1]q

The slug must match a "slug" entry in plugup.yml. Run:
  plugup list`,

	InvalidProject: `Project %[1]q is not configured correctly.
The following params are missing: %[2]s`,
}

func Msg(code Code, a ...any) string {
	msg := messages[code]
	if msg == "" {
		msg = string(code)
	}
	return fmt.Sprintf(msg, a...)
}
