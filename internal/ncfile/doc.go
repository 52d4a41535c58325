// Package ncfile builds and emits the self-describing gridded array
// files handed to the simulation: named dimensions, named variables with
// units metadata, written as NetCDF.
//
// The emission contract is strict: every variable's dimension list must
// agree with the declared dimensions in order and extent, and missing
// (cell, category) combinations are filled with a caller-supplied
// constant rather than inferred. A write that fails validation or I/O
// retains no partial file; output is regenerated from scratch each run.
//
// Files are read and written in the classic NetCDF-3 format. Some data
// stores deliver netCDF-4/HDF5 files even when asked for "netcdf";
// those must be converted (nccopy -k classic) before Read will accept
// them.
package ncfile
