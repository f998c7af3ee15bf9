// Package tools defines the tool descriptor model consumed by calibration:
// input schemas with ordered properties, and the Catalog interface that
// supplies the declared tools of each server.
package tools
