// Package schema defines the schema node tree that describes a message
// template's input: a closed set of node variants (string, number/integer,
// boolean, object, array), each carrying a title, nullability, an optional
// enum specification and a string-encoded default. Nodes are values; every
// edit helper returns a fresh node so editors can splice changed subtrees
// back into their own copy of the parent with Update.
package schema
