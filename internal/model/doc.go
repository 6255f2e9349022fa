// Package model holds the wire types shared by the probe, the result cache
// and the HTTP layer.
package model
