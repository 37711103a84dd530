// Package jinja renders Jinja2 templates through gonja with strict
// undefined handling.
//
// Undefined names may be tested with "is defined" or replaced with the
// default filter. Rendering one, or reading an attribute that does not
// exist, fails with a missing variable error naming the dotted path and the
// line it was used on. Anything else that stops a parse or a render is
// reported as a malformed template.
//
// Filters not built into gonja fall back to the hermetic Sprig function of
// the same name, with the filtered value passed as the last argument:
//
//	{{ sid | squote }}
//	{{ pool | trimPrefix("pool-") }}
//
// Filters and functions that read the environment, the filesystem, the
// clock or a random source are not available. Output depends on the
// template and its variables only.
package jinja
