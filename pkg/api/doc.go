// Package api serves the databases of a [manager.Manager] over HTTP.
//
// The surface is read-mostly: listing databases and cells, inspecting
// stackups and nets, exporting the cell hierarchy as DOT, and running the
// flatten, connectivity and metal fraction algorithms on demand. Requests on
// the same database are serialized through [manager.Manager.Do].
//
// Errors are JSON objects {"code": ..., "message": ...}. NOT_FOUND maps to
// 404, DUPLICATE_NAME to 409, input, format and state errors to 422, and
// everything else to 500.
package api
