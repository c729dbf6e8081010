// Package healthcheck implements periodic health probing for downstream
// services. A single scheduler fans out one concurrent probe per service
// each cycle and feeds the outcomes back into the discovery subsystem.
package healthcheck
