// Package headerindex builds the set of header files offered as completions
// inside #include directives.
//
// A load walks every workspace root for c_cpp_properties.json files, selects
// one configuration per file, expands its includePath entries into
// directories and lists the header files found under them. The result is
// published as an immutable Snapshot that completion requests read without
// locking.
package headerindex
