// Package netcfg loads HCL graph definitions and instantiates the bound
// propagation nodes they describe.
package netcfg
