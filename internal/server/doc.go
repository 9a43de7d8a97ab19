// Package server exposes the encoder over HTTP. POST /api/v1/encode returns
// the WAV file for one report; /health and /metrics serve monitoring.
package server
