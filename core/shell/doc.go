// Package shell interprets the command language.
//
// Input goes through the same stages a POSIX shell uses, cut down to what
// the language supports:
//
//  1. The line is split into statements on unquoted ";".
//  2. Each statement is broken into tokens: words and the operators "|",
//     "<", ">" and ">>". See Tokenize.
//  3. Tokens are grouped into pipeline segments, redirections are removed
//     from the argument list. See ParsePipeline.
//  4. Words are expanded: "$NAME", "${NAME}" and "$?". See ExpandWord.
//  5. Aliases are substituted, then the command is looked up and run with
//     the previous segment's output as its input. See Engine.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
package shell
