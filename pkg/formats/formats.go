// Package formats provides parsers for the Wavefront OBJ geometry format
// and its companion MTL material library format.
//
// Parsing is line oriented: a Lexer yields keyword lines with comments
// removed, and the OBJ and MTL parsers dispatch on the keyword. Indices in
// parsed faces are already resolved to 0-based positions in the attribute
// pools of the same document.
package formats
