// Package irtool contains the Cobra commands of the irtool CLI.
//
// Every command reads IR files given as arguments, or standard input when the argument is "-".
// Compression is detected from the leading bytes unless --compression is given.
package irtool
