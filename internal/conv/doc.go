// Package conv converts between integer types with bounds checks.
//
// Vector ids are uint32 while corpus sizes and on-disk ids arrive as int or
// int32; conversions of untrusted values go through this package.
package conv
